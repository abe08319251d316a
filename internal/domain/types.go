package domain

import (
	"strconv"
	"strings"
)

// User carries the authenticated account attached to a request.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// ParseID parses a resource identifier taken from a URL path. Anything that is
// not a positive integer cannot name a row, so it is reported as not found.
func ParseID(raw, resource string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NotFoundError{Resource: resource, Err: err}
	}
	return id, nil
}
