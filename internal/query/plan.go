package query

import (
	"strconv"
	"strings"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
)

// Plan is a query compiled once and rendered twice: as a count and as a page.
// Both renderings share FROM, WHERE, GROUP BY and HAVING text and the shared
// arguments, so a count and its pages always describe the same row set.
//
// Shared arguments come from Compile and must be bound before any page-only
// argument from Bind. HAVING is static text.
type Plan struct {
	Select  string
	From    string
	Where   string
	GroupBy string
	Having  string
	OrderBy string

	shared []any
	page   []any
}

// Compile compiles spec at the next free placeholder and records its
// arguments as shared. The returned SQL is meant for Where or a join condition.
func (p *Plan) Compile(spec *Spec, in Input) (string, error) {
	if len(p.page) > 0 {
		return "", domain.ConfigurationError{
			Component: "query",
			Msg:       "shared predicates must be compiled before page bindings",
		}
	}
	c, err := spec.Compile(in, p.next())
	if err != nil {
		return "", err
	}
	p.shared = append(p.shared, c.Args...)
	return c.SQL, nil
}

// Bind registers a value used only by the page query, such as a SELECT
// subquery or ORDER BY expression, and returns its placeholder.
func (p *Plan) Bind(v any) string {
	ph := "$" + strconv.Itoa(p.next())
	p.page = append(p.page, v)
	return ph
}

func (p *Plan) next() int { return len(p.shared) + len(p.page) + 1 }

// CountSQL renders the total-row query. Grouped plans are counted as a
// subquery so HAVING applies to the count as well.
func (p *Plan) CountSQL() (string, []any) {
	var sb strings.Builder
	if p.GroupBy == "" {
		sb.WriteString("SELECT COUNT(*) FROM ")
		sb.WriteString(p.From)
		p.writeWhere(&sb)
		return sb.String(), p.countArgs()
	}

	sb.WriteString("SELECT COUNT(*) FROM (SELECT 1 FROM ")
	sb.WriteString(p.From)
	p.writeWhere(&sb)
	p.writeGroup(&sb)
	sb.WriteString(") grouped")
	return sb.String(), p.countArgs()
}

// PageSQL renders the page query with LIMIT and OFFSET bound as the last two
// placeholders.
func (p *Plan) PageSQL(limit, offset int) (string, []any) {
	sql, args := p.ListSQL()
	n := len(args)
	args = append(args, limit, offset)
	return sql + " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}

// ListSQL renders the full ordered query without a window.
func (p *Plan) ListSQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(p.Select)
	sb.WriteString(" FROM ")
	sb.WriteString(p.From)
	p.writeWhere(&sb)
	p.writeGroup(&sb)
	if p.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(p.OrderBy)
	}

	args := make([]any, 0, len(p.shared)+len(p.page)+2)
	args = append(args, p.shared...)
	args = append(args, p.page...)
	return sb.String(), args
}

func (p *Plan) countArgs() []any {
	return append([]any(nil), p.shared...)
}

func (p *Plan) writeWhere(sb *strings.Builder) {
	if p.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(p.Where)
	}
}

func (p *Plan) writeGroup(sb *strings.Builder) {
	if p.GroupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(p.GroupBy)
	}
	if p.Having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(p.Having)
	}
}
