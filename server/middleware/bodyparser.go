package middleware

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// defaultBodyLimit bounds how much of a request body the parsing stages
// read.
const defaultBodyLimit = 1 << 20 // 1MB

// FailFunc reports a stage-level request fault to the pipeline's error
// renderer.
type FailFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// BodyConfig configures the body parsing stages.
type BodyConfig struct {
	MaxBytes int64
	Fail     FailFunc
}

func (c BodyConfig) limit() int64 {
	if c.MaxBytes > 0 {
		return c.MaxBytes
	}
	return defaultBodyLimit
}

func (c BodyConfig) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if c.Fail != nil {
		c.Fail(w, r, status, err)
		return
	}
	http.Error(w, err.Error(), status)
}

// JSONBody decodes application/json request bodies and stores the result on
// the context. Requests with other content types pass through untouched; a
// malformed body short-circuits with 400.
func JSONBody(cfg BodyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasContentType(r, "application/json") || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw, err := io.ReadAll(io.LimitReader(r.Body, cfg.limit()))
			if err != nil {
				cfg.fail(w, r, http.StatusBadRequest, err)
				return
			}
			var body any
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &body); err != nil {
					cfg.fail(w, r, http.StatusBadRequest, err)
					return
				}
			}
			next.ServeHTTP(w, withValue(r, bodyKey, body))
		})
	}
}

// URLEncodedBody decodes application/x-www-form-urlencoded bodies. With
// extended syntax, bracketed keys ("a[b][c]") expand into nested maps.
func URLEncodedBody(cfg BodyConfig, extended bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasContentType(r, "application/x-www-form-urlencoded") || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw, err := io.ReadAll(io.LimitReader(r.Body, cfg.limit()))
			if err != nil {
				cfg.fail(w, r, http.StatusBadRequest, err)
				return
			}
			values, err := url.ParseQuery(string(raw))
			if err != nil {
				cfg.fail(w, r, http.StatusBadRequest, err)
				return
			}
			next.ServeHTTP(w, withValue(r, bodyKey, expandForm(values, extended)))
		})
	}
}

func hasContentType(r *http.Request, want string) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == want
}

// expandForm converts parsed form values into a map. In extended mode,
// bracketed key paths nest; repeated keys stay as slices either way.
func expandForm(values url.Values, extended bool) map[string]any {
	body := make(map[string]any, len(values))
	for key, vals := range values {
		var value any = vals[0]
		if len(vals) > 1 {
			value = vals
		}
		if !extended {
			body[key] = value
			continue
		}
		assignPath(body, splitBracketKey(key), value)
	}
	return body
}

// splitBracketKey turns "a[b][c]" into ["a","b","c"]. Keys without brackets
// come back as a single segment.
func splitBracketKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	for _, part := range strings.Split(key[open+1:len(key)-1], "][") {
		path = append(path, part)
	}
	return path
}

func assignPath(body map[string]any, path []string, value any) {
	for len(path) > 1 {
		child, ok := body[path[0]].(map[string]any)
		if !ok {
			child = make(map[string]any)
			body[path[0]] = child
		}
		body = child
		path = path[1:]
	}
	body[path[0]] = value
}
