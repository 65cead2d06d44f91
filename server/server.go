// Package server assembles the request-processing pipeline from declarative
// configuration and manages the listening lifecycle.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aiden-jnj/ab-express/config"
	"github.com/aiden-jnj/ab-express/internal/cache"
	"github.com/aiden-jnj/ab-express/logging"
	"github.com/aiden-jnj/ab-express/server/middleware"
)

// Application is one configured server instance: an immutable middleware
// pipeline, a logger, and a single listening socket.
type Application struct {
	cfg     *config.ServerConfig
	log     config.Leveled
	views   *viewRenderer
	metrics *middleware.Metrics
	handler http.Handler
	srv     *http.Server
	state   stateValue
}

// New resolves cfg against root and assembles the pipeline. A nil or
// partial cfg is valid; every field defaults independently. When no logger
// is supplied a console-only default logger is constructed once here, never
// referenced ad hoc.
func New(root string, cfg *config.ServerConfig) (*Application, error) {
	resolved := config.ResolveServer(root, cfg)

	log := resolved.Logger
	if log == nil {
		log = logging.NewConsole()
	}

	app := &Application{
		cfg:   resolved,
		log:   log,
		views: newViewRenderer(resolved.ViewsPath, resolved.ViewEngine),
	}
	app.handler = app.buildPipeline()
	app.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", resolved.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
	return app, nil
}

// buildPipeline attaches the stages in their fixed order. Configuration
// toggles presence of optional stages only; it never reorders them. The
// panic recoverer wraps the whole chain so failure rendering always ends at
// the terminal error stage.
func (app *Application) buildPipeline() http.Handler {
	cfg := app.cfg
	r := chi.NewRouter()

	r.Use(app.recoverer)
	if cfg.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	if *cfg.UseCompression {
		r.Use(chiMiddleware.Compress(5))
	}
	if *cfg.UseMetrics {
		app.metrics = middleware.NewMetrics("abexpress")
		r.Use(app.metrics.Middleware())
	}
	if *cfg.UseCookieParser {
		r.Use(middleware.Cookies(cfg.Session.Secret))
	}
	bodyCfg := middleware.BodyConfig{Fail: app.failRequest}
	if *cfg.UseReqJSON {
		r.Use(middleware.JSONBody(bodyCfg))
	}
	if *cfg.UseURLEncodeExtended {
		r.Use(middleware.URLEncodedBody(bodyCfg, true))
	}
	r.Use(middleware.AccessLog(app.log.Writer()))
	r.Use(middleware.Sessions(cfg.Session, app.sessionStore()))
	r.Use(middleware.Timeout(cfg.Timeout))

	if *cfg.UseMetrics {
		r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	}

	// Terminal chain: application router → static files → not-found →
	// error renderer. Each link is guarded so a timed-out request stops
	// short of it.
	notFound := http.HandlerFunc(app.notFoundHandler)
	terminal := middleware.Halted(staticStage(cfg.StaticPath, notFound))
	if cfg.Router != nil {
		cfg.Router.NotFound(terminal.ServeHTTP)
		cfg.Router.MethodNotAllowed(terminal.ServeHTTP)
		r.Mount("/", middleware.Halted(cfg.Router))
	} else {
		r.Handle("/*", terminal)
	}
	return r
}

func (app *Application) sessionStore() *middleware.SessionStore {
	ttl := app.cfg.Session.Cookie.MaxAge
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return middleware.NewSessionStore(cache.New(cache.Options{DefaultTTL: ttl}))
}

// notFoundHandler is the catch-all: with Ignore404 set, unmatched GET
// requests receive the static entry page instead of a rendered 404.
func (app *Application) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if app.cfg.Ignore404 && r.Method == http.MethodGet {
		app.serveEntryPage(w, r)
		return
	}
	app.renderError(w, r, NewHTTPError(http.StatusNotFound, "Not Found"))
}

// renderError is the terminal error stage: it logs the fault, derives the
// response status, and renders the "error" view. Detail reaches the view
// only in development mode.
func (app *Application) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status != 0 {
			status = httpErr.Status
		}
		if httpErr.Message != "" {
			message = httpErr.Message
		}
	}

	app.log.Error("%s %s: %v", r.Method, r.URL.Path, err)

	detail := ""
	if app.cfg.Env == "development" {
		detail = err.Error()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if renderErr := app.views.Render(w, "error", errorView{Message: message, Error: detail}); renderErr != nil {
		app.log.Error("render error view: %v", renderErr)
	}
}

func (app *Application) failRequest(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.renderError(w, r, &HTTPError{Status: status, Message: http.StatusText(status), Err: err})
}

// Handler exposes the assembled pipeline, mainly for tests and embedding.
func (app *Application) Handler() http.Handler { return app.handler }

// Port reports the resolved listening port.
func (app *Application) Port() int { return app.cfg.Port }

// Logger returns the pipeline's logger (the supplied one or the default).
func (app *Application) Logger() config.Leveled { return app.log }
