package services

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

const (
	DefaultActivityDays = 30
	MaxActivityDays     = 365
	DefaultTopDomains   = 10
	MaxTopDomains       = 50
)

type StatsService struct {
	Stats repositories.StatsRepository
}

// Overview runs every platform counter concurrently.
func (s StatsService) Overview(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	fields := []*int64{
		&st.TotalIssues,
		&st.TotalUsers,
		&st.TotalDomains,
		&st.TotalHunts,
		&st.TotalOrganizations,
		&st.TotalPointsAwarded,
		&st.IssuesThisWeek,
		&st.NewUsersThisWeek,
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range repositories.Totals {
		i := i
		g.Go(func() (err error) {
			*fields[i], err = s.Stats.Total(gctx, i)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return models.Stats{}, err
	}
	return st, nil
}

// Activity counts issues per day over the last days days, clamped to
// [1, MaxActivityDays].
func (s StatsService) Activity(ctx context.Context, r Request) (models.Activity, error) {
	days := pagination.ParseBounded(r.Query.Get("days"), DefaultActivityDays, 1, MaxActivityDays)
	in := r.input()
	in.Query = url.Values{"days": {strconv.Itoa(days)}}

	rows, err := s.Stats.Activity(ctx, in)
	if err != nil {
		return models.Activity{}, err
	}
	return models.Activity{PeriodDays: days, Activity: rows}, nil
}

func (s StatsService) IssuesByLabel(ctx context.Context) ([]models.LabelCount, error) {
	return s.Stats.IssuesByLabel(ctx)
}

func (s StatsService) TopDomains(ctx context.Context, r Request) ([]models.TopDomain, error) {
	limit := pagination.ParseBounded(r.Query.Get("limit"), DefaultTopDomains, 1, MaxTopDomains)
	return s.Stats.TopDomains(ctx, limit)
}
