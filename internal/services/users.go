package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

type UserService struct {
	Users     repositories.UserRepository
	IssueRepo repositories.IssueRepository
}

// Get returns the public profile with score, issue count and badges.
func (s UserService) Get(ctx context.Context, id int64) (models.UserProfile, error) {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return models.UserProfile{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		u.TotalScore, err = s.Users.TotalScore(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		u.IssuesCount, err = s.Users.IssuesCount(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		u.Badges, err = s.Users.Badges(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.UserProfile{}, err
	}
	return u, nil
}

// UpdateProfile applies the editable fields of body to the caller's own
// profile. Values must be JSON scalars or null.
func (s UserService) UpdateProfile(ctx context.Context, id int64, r Request, body map[string]any) (models.ProfileUpdateResult, error) {
	if r.Caller == nil {
		return models.ProfileUpdateResult{}, domain.AuthenticationError{Msg: "Authentication required"}
	}
	if r.Caller.ID != id {
		return models.ProfileUpdateResult{}, domain.AuthorizationError{Msg: "Cannot update another user's profile"}
	}
	for _, field := range repositories.ProfileFields {
		v, ok := body[field]
		if !ok {
			continue
		}
		switch v.(type) {
		case nil, string, float64, bool:
		default:
			return models.ProfileUpdateResult{}, domain.ValidationError{Field: field, Msg: "must be a string, number, boolean or null"}
		}
	}

	profile, err := s.Users.UpdateProfile(ctx, id, body)
	if err != nil {
		return models.ProfileUpdateResult{}, err
	}
	logging.LogEvent(ctx, "users", "update_profile", fmt.Sprintf("user=%d", id))
	return models.ProfileUpdateResult{Message: "Profile updated successfully", Profile: profile}, nil
}

// Issues lists the user's visible issues.
func (s UserService) Issues(ctx context.Context, id int64, r Request) (pagination.Envelope[models.IssueSummary], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.IssueRepo.ListByUser(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.IssueSummary]{}, err
	}
	return envelope(r, fmt.Sprintf("/api/users/%d/issues", id), p, total, rows), nil
}

func (s UserService) Points(ctx context.Context, id int64, r Request) (pagination.Envelope[models.PointEntry], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Users.Points(ctx, id, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.PointEntry]{}, err
	}
	return envelope(r, fmt.Sprintf("/api/users/%d/points", id), p, total, rows), nil
}
