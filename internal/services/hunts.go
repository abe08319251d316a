package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ranking"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

// prizeFetchLimit bounds the concurrent prize lookups of one hunt page.
const prizeFetchLimit = 8

type HuntService struct {
	Hunts     repositories.HuntRepository
	IssueRepo repositories.IssueRepository
}

// List returns published hunts, each with its prizes.
func (s HuntService) List(ctx context.Context, r Request) (pagination.Envelope[models.Hunt], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Hunts.List(ctx, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.Hunt]{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prizeFetchLimit)
	for i := range rows {
		h := &rows[i]
		g.Go(func() (err error) {
			h.Prizes, err = s.Hunts.Prizes(gctx, h.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return pagination.Envelope[models.Hunt]{}, err
	}
	return envelope(r, "/api/hunts", p, total, rows, "filter", "search"), nil
}

// Get returns a published hunt with its prizes and top reporters.
func (s HuntService) Get(ctx context.Context, id int64) (models.HuntDetail, error) {
	h, err := s.Hunts.Get(ctx, id)
	if err != nil {
		return models.HuntDetail{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		h.Prizes, err = s.Hunts.Prizes(gctx, id)
		return err
	})
	g.Go(func() error {
		leaders, err := s.Hunts.Leaderboard(gctx, id)
		if err != nil {
			return err
		}
		h.Leaderboard = ranking.Assign(leaders, 0)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.HuntDetail{}, err
	}
	return h, nil
}

func (s HuntService) Issues(ctx context.Context, id int64, r Request) (pagination.Envelope[models.IssueSummary], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.IssueRepo.ListByHunt(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.IssueSummary]{}, err
	}
	return envelope(r, fmt.Sprintf("/api/hunts/%d/issues", id), p, total, rows), nil
}
