package middleware

import (
	"context"
	"net/http"
)

type contextKey int

const (
	cookiesKey contextKey = iota
	bodyKey
	sessionKey
)

// CookieMap returns the cookies parsed by the cookie stage, or nil when the
// stage is disabled.
func CookieMap(r *http.Request) map[string]string {
	m, _ := r.Context().Value(cookiesKey).(map[string]string)
	return m
}

// ParsedBody returns the request body decoded by the JSON or url-encoded
// stage, or nil when no stage matched.
func ParsedBody(r *http.Request) any {
	return r.Context().Value(bodyKey)
}

func withValue(r *http.Request, key contextKey, value any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, value))
}
