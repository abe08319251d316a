package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ranking"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

const leaderboardPath = "/api/leaderboard"

type LeaderboardService struct {
	Leaderboard repositories.LeaderboardRepository
}

// Board returns the leaderboard selected by the type parameter: users
// (default) or organizations.
func (s LeaderboardService) Board(ctx context.Context, r Request) (any, error) {
	if strings.TrimSpace(r.Query.Get("type")) == "organizations" {
		return s.Organizations(ctx, r)
	}
	return s.Users(ctx, r)
}

// Users ranks active users by points, optionally within a year or a month of
// a year.
func (s LeaderboardService) Users(ctx context.Context, r Request) (pagination.Envelope[models.UserRank], error) {
	p := r.page(pagination.LeaderboardPerPage)
	rows, total, err := s.Leaderboard.Users(ctx, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.UserRank]{}, err
	}
	rows = ranking.Assign(rows, p.Offset())
	return envelope(r, leaderboardPath, p, total, rows, "type", "year", "month"), nil
}

func (s LeaderboardService) Organizations(ctx context.Context, r Request) (pagination.Envelope[models.OrgRank], error) {
	p := r.page(pagination.LeaderboardPerPage)
	rows, total, err := s.Leaderboard.Organizations(ctx, p)
	if err != nil {
		return pagination.Envelope[models.OrgRank]{}, err
	}
	rows = ranking.Assign(rows, p.Offset())
	return envelope(r, leaderboardPath, p, total, rows, "type"), nil
}

// Monthly returns the twelve monthly winners of the year parameter, the
// current year when it is missing or not a number.
func (s LeaderboardService) Monthly(ctx context.Context, r Request) (models.MonthlyBoard, error) {
	year := r.now().Year()
	if y, err := strconv.Atoi(strings.TrimSpace(r.Query.Get("year"))); err == nil {
		year = y
	}
	winners, err := s.Leaderboard.MonthlyWinners(ctx, year)
	if err != nil {
		return models.MonthlyBoard{}, err
	}
	return ranking.MonthlyBoard(year, winners), nil
}
