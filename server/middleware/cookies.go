package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

// Cookies parses the request's cookies into a map stored on the context.
// Signed values (the "s:<value>.<signature>" scheme) are verified against
// secret and exposed unwrapped; values failing verification are dropped.
func Cookies(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parsed := make(map[string]string)
			for _, c := range r.Cookies() {
				if value, ok := unsignValue(c.Value, secret); ok {
					parsed[c.Name] = value
					continue
				}
				if !strings.HasPrefix(c.Value, "s:") {
					parsed[c.Name] = c.Value
				}
			}
			next.ServeHTTP(w, withValue(r, cookiesKey, parsed))
		})
	}
}

// SignValue wraps value in the signed-cookie scheme.
func SignValue(value, secret string) string {
	return "s:" + value + "." + signature(value, secret)
}

// unsignValue reverses SignValue, reporting whether the signature held.
func unsignValue(raw, secret string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, "s:")
	if !ok {
		return "", false
	}
	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return "", false
	}
	value, sig := rest[:dot], rest[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(signature(value, secret))) {
		return "", false
	}
	return value, true
}

func signature(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
