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

type IssueService struct {
	Issues repositories.IssueRepository
	Users  repositories.UserRepository
}

// List returns the issues visible to the caller, newest first.
func (s IssueService) List(ctx context.Context, r Request) (pagination.Envelope[models.IssueSummary], error) {
	p := r.page(pagination.DefaultPerPage)
	rows, total, err := s.Issues.List(ctx, r.input(), p)
	if err != nil {
		return pagination.Envelope[models.IssueSummary]{}, err
	}
	return envelope(r, "/api/issues", p, total, rows, "status", "domain", "search"), nil
}

// Get returns one issue with its screenshots, tags and the caller's
// reactions.
func (s IssueService) Get(ctx context.Context, id int64, r Request) (models.IssueDetail, error) {
	issue, err := s.Issues.Get(ctx, id, r.input())
	if err != nil {
		return models.IssueDetail{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		issue.Screenshots, err = s.Issues.Screenshots(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		issue.Tags, err = s.Issues.Tags(gctx, id)
		return err
	})
	if caller := r.CallerID(); caller > 0 {
		g.Go(func() (err error) {
			issue.IsUpvoted, err = s.Issues.HasReaction(gctx, repositories.Upvote, caller, id)
			return err
		})
		g.Go(func() (err error) {
			issue.IsFlagged, err = s.Issues.HasReaction(gctx, repositories.Flag, caller, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return models.IssueDetail{}, err
	}
	return issue, nil
}

func (s IssueService) ToggleLike(ctx context.Context, id int64, r Request) (models.ToggleResult, error) {
	on, err := s.toggle(ctx, repositories.Upvote, id, r)
	if err != nil {
		return models.ToggleResult{}, err
	}
	msg := "Issue unliked"
	if on {
		msg = "Issue liked"
	}
	return models.ToggleResult{Message: msg, Liked: &on}, nil
}

func (s IssueService) ToggleFlag(ctx context.Context, id int64, r Request) (models.ToggleResult, error) {
	on, err := s.toggle(ctx, repositories.Flag, id, r)
	if err != nil {
		return models.ToggleResult{}, err
	}
	msg := "Issue unflagged"
	if on {
		msg = "Issue flagged"
	}
	return models.ToggleResult{Message: msg, Flagged: &on}, nil
}

func (s IssueService) toggle(ctx context.Context, kind repositories.Reaction, id int64, r Request) (bool, error) {
	if r.Caller == nil {
		return false, domain.AuthenticationError{Msg: "Authentication required"}
	}
	visible, err := s.Issues.Visible(ctx, id, r.input())
	if err != nil {
		return false, err
	}
	if !visible {
		return false, domain.NotFoundError{Resource: "Issue"}
	}

	profileID, ok, err := s.Users.ProfileID(ctx, r.Caller.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, domain.NotFoundError{Resource: "User profile"}
	}

	on, err := s.Issues.Toggle(ctx, kind, profileID, id)
	if err != nil {
		return false, err
	}
	logging.LogEvent(ctx, "issues", kind.String(), fmt.Sprintf("user=%d issue=%d on=%t", r.Caller.ID, id, on))
	return on, nil
}
