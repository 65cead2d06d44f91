package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// HTTPError carries a response status alongside the underlying fault. The
// error-rendering stage uses the status when present and 500 otherwise.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

// NewHTTPError builds an HTTPError with the given status and message.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Error reports a request-level fault to the pipeline's terminal
// error-rendering stage. Handlers mounted on the application router may call
// it directly.
func (app *Application) Error(w http.ResponseWriter, r *http.Request, err error) {
	app.renderError(w, r, err)
}

// recoverer converts an in-pipeline panic into a rendered 500 so failure
// visibility always ends at the error stage.
func (app *Application) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				app.renderError(w, r, &HTTPError{
					Status:  http.StatusInternalServerError,
					Message: "Internal Server Error",
					Err:     fmt.Errorf("panic: %v\n%s", p, debug.Stack()),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
