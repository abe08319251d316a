package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
)

type fakeStore struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (f *fakeStore) LookupToken(_ context.Context, key string) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users[key], nil
}

func newStore() *fakeStore {
	return &fakeStore{users: map[string]*domain.User{
		"good":     {ID: 1, Username: "alice", IsActive: true},
		"disabled": {ID: 2, Username: "bob", IsActive: false},
	}}
}

func TestParseAuthorization(t *testing.T) {
	cases := []struct {
		header string
		key    string
		ok     bool
	}{
		{"Token abc123", "abc123", true},
		{"Bearer abc123", "abc123", true},
		{"token abc123", "abc123", true},
		{"Token ", "", false},
		{"Token    ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc123", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		key, ok := ParseAuthorization(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.key, key, tc.header)
	}
}

func TestResolve(t *testing.T) {
	store := newStore()
	r := NewResolver(store)
	ctx := context.Background()

	u, err := r.Resolve(ctx, "Token good")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)

	u, err = r.Resolve(ctx, "Token unknown")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = r.Resolve(ctx, "Token disabled")
	require.NoError(t, err)
	assert.Nil(t, u, "inactive account resolves like an unknown token")

	u, err = r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Equal(t, 3, store.calls, "missing header never reaches the store")
}

func TestResolve_NoCaching(t *testing.T) {
	store := newStore()
	r := NewResolver(store)
	for i := 0; i < 3; i++ {
		_, _ = r.Resolve(context.Background(), "Token good")
	}
	assert.Equal(t, 3, store.calls)
}

func TestRequire(t *testing.T) {
	r := NewResolver(newStore())
	ctx := context.Background()

	_, err := r.Require(ctx, "")
	require.Error(t, err)
	assert.True(t, domain.IsAuthentication(err))
	assert.Equal(t, MsgRequired, err.Error())

	_, err = r.Require(ctx, "Token nope")
	require.Error(t, err)
	assert.Equal(t, MsgInvalid, err.Error())

	_, err = r.Require(ctx, "Token disabled")
	require.Error(t, err)
	assert.Equal(t, MsgInvalid, err.Error())

	u, err := r.Require(ctx, "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestRequire_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&fakeStore{err: boom})

	_, err := r.Require(context.Background(), "Token good")
	require.Error(t, err)
	assert.True(t, domain.IsAuthentication(err))
	assert.ErrorIs(t, err, boom)

	_, unknown := NewResolver(newStore()).Require(context.Background(), "Token nope")
	require.Error(t, unknown)
	assert.Equal(t, unknown.Error(), err.Error())
}

func TestOptional(t *testing.T) {
	assert.Nil(t, NewResolver(&fakeStore{err: errors.New("down")}).Optional(context.Background(), "Token good"))
	assert.Nil(t, NewResolver(newStore()).Optional(context.Background(), "Token nope"))
	assert.NotNil(t, NewResolver(newStore()).Optional(context.Background(), "Token good"))
}
