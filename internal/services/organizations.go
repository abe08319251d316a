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

type OrganizationService struct {
	Organizations repositories.OrganizationRepository
}

func (s OrganizationService) List(ctx context.Context, r Request) (pagination.Envelope[models.Organization], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Organizations.List(ctx, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.Organization]{}, err
	}
	return envelope(r, "/api/organizations", p, total, rows, "search"), nil
}

// Get returns the organization with its tags and managers.
func (s OrganizationService) Get(ctx context.Context, id int64) (models.OrganizationDetail, error) {
	o, err := s.Organizations.Get(ctx, id)
	if err != nil {
		return models.OrganizationDetail{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		o.Tags, err = s.Organizations.Tags(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		o.Managers, err = s.Organizations.Managers(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.OrganizationDetail{}, err
	}
	return o, nil
}

func (s OrganizationService) Repositories(ctx context.Context, id int64, r Request) (pagination.Envelope[models.Repository], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Organizations.Repositories(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.Repository]{}, err
	}
	return envelope(r, fmt.Sprintf("/api/organizations/%d/repositories", id), p, total, rows), nil
}

// Members lists members ranked by total score across the whole organization.
func (s OrganizationService) Members(ctx context.Context, id int64, r Request) (pagination.Envelope[models.Member], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Organizations.Members(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.Member]{}, err
	}
	rows = ranking.Assign(rows, p.Offset())
	return envelope(r, fmt.Sprintf("/api/organizations/%d/members", id), p, total, rows), nil
}
