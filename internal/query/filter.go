// Package query compiles declared route filters into parameterized SQL.
//
// Routes declare which query-string parameters they recognise and which
// columns those parameters compare against. Incoming values only ever reach
// the argument list; column names, operators and base predicates come from
// the route declaration alone.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
)

// Op selects how a filter compares its column(s) with the bound value.
type Op int

const (
	// Equals compares the first column with the value.
	Equals Op = iota
	// Contains matches every column with ILIKE %value%, joined with OR.
	// All columns share one placeholder.
	Contains
	// YearOf compares EXTRACT(YEAR FROM column) with an integer value.
	YearOf
	// MonthOf compares EXTRACT(MONTH FROM column) with an integer value.
	MonthOf
	// Phase maps active/upcoming/previous onto a start and end column,
	// binding the request clock rather than the raw value.
	Phase
	// WithinDays keeps rows whose column is newer than NOW() minus value days.
	WithinDays
	// VisibleTo is always applied: hidden rows are dropped unless the
	// caller owns them. Columns are the hidden flag then the owner column.
	VisibleTo
)

func (o Op) String() string {
	switch o {
	case Equals:
		return "equals"
	case Contains:
		return "contains"
	case YearOf:
		return "year_of"
	case MonthOf:
		return "month_of"
	case Phase:
		return "phase"
	case WithinDays:
		return "within_days"
	case VisibleTo:
		return "visible_to"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Kind is the value type a filter expects.
type Kind int

const (
	Text Kind = iota
	Int
)

// Source says where a filter reads its value from.
type Source int

const (
	FromQuery Source = iota
	// FromPath values are supplied by the router, never by the query string,
	// and must be present.
	FromPath
)

// Filter declares one recognised parameter of a route.
type Filter struct {
	Param   string
	Columns []string
	Op      Op
	Kind    Kind
	Source  Source
	// Requires names another parameter that must also be present and valid.
	Requires string
}

// Input carries the per-request values a Spec compiles against.
type Input struct {
	Query url.Values
	Path  map[string]string
	// Caller is the authenticated user id, zero when anonymous.
	Caller int64
	Now    time.Time
}

// Spec is a route's fixed filter declaration.
type Spec struct {
	allowed map[string]struct{}
	base    []string
	filters []Filter
}

// NewSpec validates the declaration against the route's column allow-list.
// base fragments are trusted predicates applied on every request.
func NewSpec(allowed []string, base []string, filters ...Filter) (*Spec, error) {
	s := &Spec{
		allowed: make(map[string]struct{}, len(allowed)),
		base:    append([]string(nil), base...),
		filters: append([]Filter(nil), filters...),
	}
	for _, col := range allowed {
		s.allowed[col] = struct{}{}
	}

	params := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		if f.Param != "" {
			params[f.Param] = struct{}{}
		}
	}

	for _, f := range s.filters {
		if err := s.check(f, params); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSpec is NewSpec for package-level declarations.
func MustSpec(allowed []string, base []string, filters ...Filter) *Spec {
	s, err := NewSpec(allowed, base, filters...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Spec) check(f Filter, params map[string]struct{}) error {
	fail := func(format string, args ...any) error {
		return domain.ConfigurationError{Component: "query", Msg: fmt.Sprintf(format, args...)}
	}

	if f.Op != VisibleTo && f.Param == "" {
		return fail("%s filter has no parameter name", f.Op)
	}
	want := 1
	if f.Op == Phase || f.Op == VisibleTo {
		want = 2
	}
	if len(f.Columns) < want || (want == 2 && len(f.Columns) != 2) {
		return fail("%s filter %q needs %d column(s), got %d", f.Op, f.Param, want, len(f.Columns))
	}
	for _, col := range f.Columns {
		if _, ok := s.allowed[col]; !ok {
			return fail("column %q is not allowed for filter %q", col, f.Param)
		}
	}
	if f.Requires != "" {
		if _, ok := params[f.Requires]; !ok {
			return fail("filter %q requires undeclared parameter %q", f.Param, f.Requires)
		}
	}
	return nil
}

// Clause is a compiled predicate and its positional arguments.
type Clause struct {
	SQL  string
	Args []any
	// Next is the first placeholder index after this clause.
	Next int
}

// Compile builds the conjunction of the base fragments and every filter
// present in the input. Placeholders start at $start and increase by one per
// bound value. An empty conjunction compiles to TRUE.
func (s *Spec) Compile(in Input, start int) (Clause, error) {
	if start < 1 {
		start = 1
	}
	b := builder{next: start}
	b.parts = append(b.parts, s.base...)

	for _, f := range s.filters {
		if f.Op == VisibleTo {
			b.visibleTo(f, in.Caller)
			continue
		}

		raw, ok, err := s.value(f, in)
		if err != nil {
			return Clause{}, err
		}
		if !ok {
			continue
		}
		if f.Requires != "" {
			if _, present := s.lookup(f.Requires, in); !present {
				continue
			}
		}

		switch f.Op {
		case Equals:
			b.add(f.Columns[0]+" = %s", raw)
		case Contains:
			ph := b.bind("%" + EscapeLike(raw.(string)) + "%")
			ors := make([]string, len(f.Columns))
			for i, col := range f.Columns {
				ors[i] = col + " ILIKE " + ph
			}
			if len(ors) == 1 {
				b.parts = append(b.parts, ors[0])
			} else {
				b.parts = append(b.parts, "("+strings.Join(ors, " OR ")+")")
			}
		case YearOf:
			b.add("EXTRACT(YEAR FROM "+f.Columns[0]+") = %s", raw)
		case MonthOf:
			b.add("EXTRACT(MONTH FROM "+f.Columns[0]+") = %s", raw)
		case WithinDays:
			b.add(f.Columns[0]+" >= NOW() - make_interval(days => %s)", raw)
		case Phase:
			b.phase(f, raw.(string), in.Now)
		}
	}

	sql := "TRUE"
	if len(b.parts) > 0 {
		sql = strings.Join(b.parts, " AND ")
	}
	return Clause{SQL: sql, Args: b.args, Next: b.next}, nil
}

// lookup returns the raw, trimmed value of a declared parameter.
func (s *Spec) lookup(param string, in Input) (any, bool) {
	for _, f := range s.filters {
		if f.Param == param {
			v, ok, err := s.value(f, in)
			return v, ok && err == nil
		}
	}
	return nil, false
}

// value reads and converts a filter's input. Values that do not parse as the
// declared kind are treated as absent.
func (s *Spec) value(f Filter, in Input) (any, bool, error) {
	var raw string
	switch f.Source {
	case FromPath:
		v, ok := in.Path[f.Param]
		if !ok {
			return nil, false, domain.ConfigurationError{
				Component: "query",
				Msg:       fmt.Sprintf("path value %q was not supplied", f.Param),
			}
		}
		raw = v
	default:
		raw = in.Query.Get(f.Param)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false, nil
	}

	if f.Kind == Int {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false, nil
		}
		return n, true, nil
	}
	return raw, true, nil
}

type builder struct {
	parts []string
	args  []any
	next  int
}

func (b *builder) bind(v any) string {
	ph := "$" + strconv.Itoa(b.next)
	b.args = append(b.args, v)
	b.next++
	return ph
}

func (b *builder) add(format string, v any) {
	b.parts = append(b.parts, fmt.Sprintf(format, b.bind(v)))
}

func (b *builder) visibleTo(f Filter, caller int64) {
	hidden, owner := f.Columns[0], f.Columns[1]
	if caller <= 0 {
		b.parts = append(b.parts, hidden+" = false")
		return
	}
	b.parts = append(b.parts, "("+hidden+" = false OR "+owner+" = "+b.bind(caller)+")")
}

func (b *builder) phase(f Filter, phase string, now time.Time) {
	start, end := f.Columns[0], f.Columns[1]
	if now.IsZero() {
		now = time.Now().UTC()
	}
	switch phase {
	case "active":
		ph := b.bind(now)
		b.parts = append(b.parts, start+" <= "+ph+" AND "+end+" >= "+ph)
	case "upcoming":
		b.parts = append(b.parts, start+" > "+b.bind(now))
	case "previous":
		b.parts = append(b.parts, end+" < "+b.bind(now))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so the value matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
