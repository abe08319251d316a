package repositories

import (
	"context"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// TokenRepository looks up API tokens. It satisfies identity.CredentialStore.
type TokenRepository struct {
	DB *store.DB
}

// LookupToken returns the active account owning key, or nil when the key is
// unknown or its account is disabled.
func (r TokenRepository) LookupToken(ctx context.Context, key string) (*domain.User, error) {
	const q = `SELECT u.id, u.username, u.email, u.is_active, u.is_staff, u.is_superuser
FROM authtoken_token t
JOIN auth_user u ON t.user_id = u.id
WHERE t.key = $1 AND u.is_active = true`

	var u domain.User
	found, err := r.DB.Get(ctx, "token_lookup", q, []any{key},
		&u.ID, &u.Username, &u.Email, &u.IsActive, &u.IsStaff, &u.IsSuperuser)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}
