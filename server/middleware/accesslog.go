package middleware

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// AccessLog writes one line per completed request to w. The server passes
// the logger's stream adapter here so access logs land in the http-severity
// sinks; a nil writer falls back to stdout.
func AccessLog(w io.Writer) func(http.Handler) http.Handler {
	if w == nil {
		w = os.Stdout
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(rw, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fmt.Fprintf(w, "%s - %s %s %s %d %d - %.3f ms\n",
				r.RemoteAddr,
				r.Method,
				r.URL.RequestURI(),
				r.Proto,
				status,
				ww.BytesWritten(),
				float64(time.Since(start).Microseconds())/1000.0,
			)
		})
	}
}
