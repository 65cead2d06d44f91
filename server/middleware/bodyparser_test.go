package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureBody(t *testing.T, mw func(http.Handler) http.Handler, r *http.Request) (any, *httptest.ResponseRecorder) {
	t.Helper()
	var body any
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		body = ParsedBody(r)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code == http.StatusOK {
		require.True(t, called)
	}
	return body, w
}

func TestJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bob","count":2}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	body, w := captureBody(t, JSONBody(BodyConfig{}), r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"name": "bob", "count": float64(2)}, body)
}

func TestJSONBodyMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	r.Header.Set("Content-Type", "application/json")

	_, w := captureBody(t, JSONBody(BodyConfig{}), r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJSONBodyIgnoresOtherContentTypes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=bob"))
	r.Header.Set("Content-Type", "text/plain")

	body, w := captureBody(t, JSONBody(BodyConfig{}), r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body)
}

func TestJSONBodyFailFuncRoutesFaults(t *testing.T) {
	var gotStatus int
	var gotErr error
	cfg := BodyConfig{Fail: func(w http.ResponseWriter, r *http.Request, status int, err error) {
		gotStatus = status
		gotErr = err
		w.WriteHeader(status)
	}}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))
	r.Header.Set("Content-Type", "application/json")
	_, w := captureBody(t, JSONBody(cfg), r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, gotStatus)
	assert.Error(t, gotErr)
}

func TestURLEncodedBodyExtended(t *testing.T) {
	form := "user%5Bname%5D=bob&user%5Baddress%5D%5Bcity%5D=Pohang&tag=a&tag=b&plain=1"
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, w := captureBody(t, URLEncodedBody(BodyConfig{}, true), r)
	require.Equal(t, http.StatusOK, w.Code)

	parsed, ok := body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", parsed["plain"])
	assert.Equal(t, []string{"a", "b"}, parsed["tag"])

	user, ok := parsed["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bob", user["name"])
	address, ok := user["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Pohang", address["city"])
}

func TestURLEncodedBodySimple(t *testing.T) {
	form := "user%5Bname%5D=bob&plain=1"
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, w := captureBody(t, URLEncodedBody(BodyConfig{}, false), r)
	require.Equal(t, http.StatusOK, w.Code)

	parsed, ok := body.(map[string]any)
	require.True(t, ok)
	// Without extended syntax the bracketed key stays literal.
	assert.Equal(t, "bob", parsed["user[name]"])
	assert.Equal(t, "1", parsed["plain"])
}

func TestSplitBracketKey(t *testing.T) {
	assert.Equal(t, []string{"a"}, splitBracketKey("a"))
	assert.Equal(t, []string{"a", "b"}, splitBracketKey("a[b]"))
	assert.Equal(t, []string{"a", "b", "c"}, splitBracketKey("a[b][c]"))
	assert.Equal(t, []string{"[b]"}, splitBracketKey("[b]"))
	assert.Equal(t, []string{"a[b"}, splitBracketKey("a[b"))
}
