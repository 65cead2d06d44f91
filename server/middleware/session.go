package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aiden-jnj/ab-express/config"
	"github.com/aiden-jnj/ab-express/internal/cache"
)

// SessionCookieName is the cookie carrying the signed session ID.
const SessionCookieName = "connect.sid"

// Session is the per-request session handed to downstream stages.
type Session struct {
	ID string

	mu        sync.Mutex
	values    map[string]any
	fresh     bool
	dirty     bool
	destroyed bool
}

// Get returns a session value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a session value and marks the session for persistence.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
}

// Destroy discards the session: the backing store entry is removed once the
// request completes and nothing is persisted for it. The next request with
// the stale cookie starts a fresh session.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *Session) killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Session) snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]any, len(s.values))
	for k, v := range s.values {
		copied[k] = v
	}
	return copied
}

// SessionFromContext returns the request's session, or nil outside the
// session stage.
func SessionFromContext(r *http.Request) *Session {
	s, _ := r.Context().Value(sessionKey).(*Session)
	return s
}

// SessionStore persists session data between requests.
type SessionStore struct {
	cache cache.Store
}

// NewSessionStore wraps a TTL cache as the session backing store.
func NewSessionStore(c cache.Store) *SessionStore {
	return &SessionStore{cache: c}
}

func (st *SessionStore) load(id string) (map[string]any, bool) {
	raw, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	values, ok := raw.(map[string]any)
	return values, ok
}

func (st *SessionStore) save(id string, values map[string]any, ttl time.Duration) {
	st.cache.Set(id, values, ttl)
}

func (st *SessionStore) destroy(id string) {
	st.cache.Delete(id)
}

// Sessions attaches a session to every request. cfg must be resolved; store
// must be non-nil. A fresh session is persisted according to
// SaveUninitialized, an existing one according to Resave and modification
// state, matching the configured defaults (resave off, save-uninitialized
// on).
func Sessions(cfg *config.SessionConfig, store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := loadSession(r, cfg, store)

			if session.fresh {
				// The cookie must be committed before the first response
				// write.
				http.SetCookie(w, sessionCookie(cfg, session.ID))
			}

			next.ServeHTTP(w, withValue(r, sessionKey, session))

			if session.killed() {
				store.destroy(session.ID)
				return
			}

			ttl := cfg.Cookie.MaxAge
			switch {
			case session.fresh:
				if *cfg.SaveUninitialized || session.dirty {
					store.save(session.ID, session.snapshot(), ttl)
				}
			case session.dirty || *cfg.Resave:
				store.save(session.ID, session.snapshot(), ttl)
			}
		})
	}
}

func loadSession(r *http.Request, cfg *config.SessionConfig, store *SessionStore) *Session {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if id, ok := unsignValue(c.Value, cfg.Secret); ok {
			if values, found := store.load(id); found {
				return &Session{ID: id, values: values}
			}
		}
	}
	return &Session{
		ID:     uuid.NewString(),
		values: make(map[string]any),
		fresh:  true,
	}
}

func sessionCookie(cfg *config.SessionConfig, id string) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    SignValue(id, cfg.Secret),
		Path:     cfg.Cookie.Path,
		Domain:   cfg.Cookie.Domain,
		HttpOnly: *cfg.Cookie.HTTPOnly,
		Secure:   *cfg.Cookie.Secure,
	}
	if cfg.Cookie.MaxAge > 0 {
		c.MaxAge = int(cfg.Cookie.MaxAge / time.Second)
		c.Expires = time.Now().Add(cfg.Cookie.MaxAge)
	}
	return c
}
