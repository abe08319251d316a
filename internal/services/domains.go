package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

type DomainService struct {
	Domains   repositories.DomainRepository
	IssueRepo repositories.IssueRepository
}

func (s DomainService) List(ctx context.Context, r Request) (pagination.Envelope[models.Domain], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Domains.List(ctx, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.Domain]{}, err
	}
	return envelope(r, "/api/domains", p, total, rows, "search"), nil
}

// Get returns the domain with its top tester and tags.
func (s DomainService) Get(ctx context.Context, id int64) (models.DomainDetail, error) {
	d, err := s.Domains.Get(ctx, id)
	if err != nil {
		return models.DomainDetail{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TopTester, err = s.Domains.TopTester(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Tags, err = s.Domains.Tags(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DomainDetail{}, err
	}
	return d, nil
}

func (s DomainService) Issues(ctx context.Context, id int64, r Request) (pagination.Envelope[models.IssueSummary], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.IssueRepo.ListByDomain(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.IssueSummary]{}, err
	}
	return envelope(r, fmt.Sprintf("/api/domains/%d/issues", id), p, total, rows, "status"), nil
}
