package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"time"
)

// State tracks the startup lifecycle of an Application's listener.
type State int32

const (
	StateIdle State = iota
	StateBinding
	StateListening
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

type stateValue struct{ v atomic.Int32 }

func (s *stateValue) store(st State) { s.v.Store(int32(st)) }
func (s *stateValue) load() State    { return State(s.v.Load()) }

// BindErrorKind classifies why binding the listen address failed.
type BindErrorKind int

const (
	BindUnknown BindErrorKind = iota
	BindAddrInUse
	BindPermission
)

// BindError is returned by Listen when the socket cannot be bound. The two
// classified kinds are operational conditions the caller may treat as a
// clean shutdown rather than a crash.
type BindError struct {
	Kind BindErrorKind
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	switch e.Kind {
	case BindAddrInUse:
		return fmt.Sprintf("%s is already in use", e.Addr)
	case BindPermission:
		return fmt.Sprintf("%s requires elevated privileges", e.Addr)
	}
	return fmt.Sprintf("listen on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Recoverable reports whether the failure is an expected operational
// condition. Unknown bind failures are not.
func (e *BindError) Recoverable() bool {
	return e.Kind == BindAddrInUse || e.Kind == BindPermission
}

func classifyBindError(addr string, err error) *BindError {
	kind := BindUnknown
	if errors.Is(err, syscall.EADDRINUSE) {
		kind = BindAddrInUse
	} else if errors.Is(err, syscall.EACCES) {
		kind = BindPermission
	}
	return &BindError{Kind: kind, Addr: addr, Err: err}
}

func describeAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return fmt.Sprintf("port %d", tcp.Port)
	}
	return "pipe " + addr.String()
}

// Listen binds the configured address and serves until ctx is cancelled or
// the server fails. Bind failures are classified and logged here so the
// caller only decides whether a recoverable failure ends the process
// cleanly. Listen itself never terminates the process.
func (app *Application) Listen(ctx context.Context) error {
	app.state.store(StateBinding)

	addr := fmt.Sprintf("port %d", app.cfg.Port)
	ln, err := net.Listen("tcp", app.srv.Addr)
	if err != nil {
		app.state.store(StateFailed)
		bindErr := classifyBindError(addr, err)
		app.log.Error("%v", bindErr)
		return bindErr
	}

	app.state.store(StateListening)
	app.log.Info("listening on %s", describeAddr(ln.Addr()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// Shutdown drains in-flight requests and closes the listener.
func (app *Application) Shutdown(ctx context.Context) error {
	app.log.Info("shutting down")
	if err := app.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// State reports the listener lifecycle state.
func (app *Application) State() State { return app.state.load() }
