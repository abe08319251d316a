// Package pagination implements offset pagination and the list envelope
// shared by every collection route.
package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	MaxPerPage         = 100
	DefaultPerPage     = 20
	LeaderboardPerPage = 50

	// MaxPage keeps (Page-1)*PerPage inside an int for every allowed PerPage.
	MaxPage = int(^uint(0)>>1) / MaxPerPage
)

// Params is a normalised page request: Page >= 1 and 1 <= PerPage <= MaxPerPage.
type Params struct {
	Page    int
	PerPage int
}

// Parse reads page and per_page. A missing, non-numeric or non-positive page
// is page 1 and pages past MaxPage are MaxPage. A missing or non-numeric
// per_page takes the route default; any other value is clamped to
// [1, MaxPerPage].
func Parse(q url.Values, defaultPerPage int) Params {
	return Params{
		Page:    ParseBounded(q.Get("page"), 1, 1, MaxPage),
		PerPage: ParseBounded(q.Get("per_page"), defaultPerPage, 1, MaxPerPage),
	}
}

// ParseBounded parses raw as an integer, falling back to def when raw is not a
// number, and clamps the result to [lo, hi]. Numbers too large for an int
// clamp like any other out-of-range value.
func ParseBounded(raw string, def, lo, hi int) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	switch {
	case err == nil:
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(raw, "-"):
		return lo
	case errors.Is(err, strconv.ErrRange):
		return hi
	default:
		n = def
	}
	return Clamp(n, lo, hi)
}

func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Offset is (Page-1) * PerPage, with Page held to [1, MaxPage].
func (p Params) Offset() int {
	page := Clamp(p.Page, 1, MaxPage)
	return (page - 1) * p.PerPage
}

// Envelope is the list response body.
type Envelope[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewEnvelope wraps one page of results. Links reuse base and extra with page
// and per_page overridden. Count is always total, whatever the page size.
func NewEnvelope[T any](total int64, p Params, base string, extra url.Values, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{Count: total, Results: results}
	if int64(p.Offset()+p.PerPage) < total {
		env.Next = link(base, extra, p.Page+1, p.PerPage)
	}
	if p.Page > 1 {
		env.Previous = link(base, extra, p.Page-1, p.PerPage)
	}
	return env
}

// Keep copies the non-empty values of the named keys, for carrying active
// filters into page links.
func Keep(q url.Values, keys ...string) url.Values {
	out := url.Values{}
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func link(base string, extra url.Values, page, perPage int) *string {
	q := url.Values{}
	for k, vs := range extra {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	s := base + "?" + q.Encode()
	return &s
}
