package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Timeout bounds downstream processing by duration. When the deadline
// expires before a response is produced, the stage writes 503 once and every
// later write for that request is suppressed, so downstream stages become
// no-ops.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
						return
					}
					close(done)
				}()
				next.ServeHTTP(tw, detachRequest(r, ctx))
			}()

			select {
			case <-done:
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				tw.abort()
			}
		})
	}
}

// detachRequest rebinds the request to ctx and replaces the mux's pooled
// chi route context with a private copy. The pooled context returns to its
// pool when the timed-out request unwinds, so the goroutine must not keep
// routing through it while later requests reuse it.
func detachRequest(r *http.Request, ctx context.Context) *http.Request {
	rctx := chi.RouteContext(ctx)
	if rctx == nil {
		return r.WithContext(ctx)
	}
	detached := chi.NewRouteContext()
	detached.Routes = rctx.Routes
	detached.RoutePath = rctx.RoutePath
	detached.RouteMethod = rctx.RouteMethod
	detached.URLParams.Keys = append(detached.URLParams.Keys, rctx.URLParams.Keys...)
	detached.URLParams.Values = append(detached.URLParams.Values, rctx.URLParams.Values...)
	return r.WithContext(context.WithValue(ctx, chi.RouteCtxKey, detached))
}

// Halted guards a stage behind the timeout: once the request deadline has
// expired the stage is skipped entirely.
func Halted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			return
		}
		next.ServeHTTP(w, r)
	})
}

type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wrote {
		return
	}
	tw.wrote = true
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.wrote = true
	return tw.ResponseWriter.Write(p)
}

// abort emits the timeout response unless the handler responded first.
func (tw *timeoutWriter) abort() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.wrote {
		tw.ResponseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
		tw.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
		tw.ResponseWriter.Write([]byte("Service Unavailable"))
	}
	tw.timedOut = true
}
