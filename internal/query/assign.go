package query

import (
	"strconv"
	"strings"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
)

// Assignments renders a SET list for the allow-listed keys present in body,
// in allow-list order, starting at placeholder $start. Keys outside the
// allow-list are ignored. A body with no allowed key is a validation error.
func Assignments(allowed []string, body map[string]any, start int) (Clause, error) {
	if start < 1 {
		start = 1
	}
	var (
		sets []string
		args []any
		next = start
	)
	for _, col := range allowed {
		v, ok := body[col]
		if !ok {
			continue
		}
		sets = append(sets, col+" = $"+strconv.Itoa(next))
		args = append(args, v)
		next++
	}
	if len(sets) == 0 {
		return Clause{}, domain.ValidationError{Msg: "No valid fields to update"}
	}
	return Clause{SQL: strings.Join(sets, ", "), Args: args, Next: next}, nil
}
