// Package identity resolves opaque API tokens to active user accounts.
package identity

import (
	"context"
	"strings"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
)

const (
	MsgRequired = "Authentication required. Provide a valid token in the Authorization header."
	MsgInvalid  = "Invalid or expired token"
)

var schemes = []string{"Token ", "Bearer "}

// ParseAuthorization extracts the credential from an Authorization header.
// It accepts the "Token <key>" and "Bearer <key>" schemes.
func ParseAuthorization(header string) (string, bool) {
	for _, scheme := range schemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			key := strings.TrimSpace(header[len(scheme):])
			return key, key != ""
		}
	}
	return "", false
}

// CredentialStore looks a token up. It returns (nil, nil) when no active
// account holds the token.
type CredentialStore interface {
	LookupToken(ctx context.Context, key string) (*domain.User, error)
}

// Resolver performs one store lookup per call and caches nothing.
type Resolver struct {
	store CredentialStore
}

func NewResolver(store CredentialStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the user for the Authorization header, or nil when the
// header is missing, malformed or unknown. Store failures are returned.
func (r *Resolver) Resolve(ctx context.Context, header string) (*domain.User, error) {
	key, ok := ParseAuthorization(header)
	if !ok {
		return nil, nil
	}
	user, err := r.store.LookupToken(ctx, key)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Require resolves header and fails with an AuthenticationError when no user
// results. A store failure is logged as auth_store_error but reads to the
// client exactly like an unknown token.
func (r *Resolver) Require(ctx context.Context, header string) (*domain.User, error) {
	if _, ok := ParseAuthorization(header); !ok {
		return nil, domain.AuthenticationError{Msg: MsgRequired}
	}
	user, err := r.Resolve(ctx, header)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("event", "auth_store_error").Msg("token lookup failed")
		return nil, domain.AuthenticationError{Msg: MsgInvalid, Err: err}
	}
	if user == nil {
		logging.Ctx(ctx).Debug().Str("event", "auth_invalid_token").Msg("token did not match an active account")
		return nil, domain.AuthenticationError{Msg: MsgInvalid}
	}
	return user, nil
}

// Optional resolves header and falls back to anonymous on any failure.
func (r *Resolver) Optional(ctx context.Context, header string) *domain.User {
	user, err := r.Resolve(ctx, header)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event", "auth_store_error").Msg("optional token lookup failed, continuing anonymously")
		return nil
	}
	return user
}
