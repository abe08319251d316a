package services

import (
	"net/url"
	"time"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
)

// Request carries what an operation needs from the inbound call.
type Request struct {
	Query url.Values
	// Caller is nil for anonymous requests.
	Caller *domain.User
	Now    time.Time
}

func (r Request) CallerID() int64 {
	if r.Caller == nil {
		return 0
	}
	return r.Caller.ID
}

func (r Request) now() time.Time {
	if r.Now.IsZero() {
		return time.Now().UTC()
	}
	return r.Now
}

func (r Request) input() query.Input {
	q := r.Query
	if q == nil {
		q = url.Values{}
	}
	return query.Input{Query: q, Caller: r.CallerID(), Now: r.now()}
}

func (r Request) page(defaultPerPage int) pagination.Params {
	return pagination.Parse(r.Query, defaultPerPage)
}

// envelope wraps rows, carrying the named filters into the page links.
func envelope[T any](r Request, base string, p pagination.Params, total int64, rows []T, keep ...string) pagination.Envelope[T] {
	return pagination.NewEnvelope(total, p, base, pagination.Keep(r.Query, keep...), rows)
}
