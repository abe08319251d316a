package ratelimit

import (
	"net/http"
	"strings"
)

// DefaultClientHeaders are consulted in order to identify a client.
var DefaultClientHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For"}

// ClientID returns the first non-empty header value from headers. For
// X-Forwarded-For style lists only the first entry is used. Requests with none
// of the headers share UnknownClient.
func ClientID(h http.Header, headers []string) string {
	for _, name := range headers {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		if v != "" {
			return v
		}
	}
	return UnknownClient
}
