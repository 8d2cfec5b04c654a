// Package server exposes the greeting over HTTP.
//
//	GET    /       index action, {"message": ["Hello", "World"]}
//	GET    /hello  same as /
//	DELETE /hello  forget the memoized messages
//	GET    /healthz
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/unkn0wn-root/memocache"
)

// MessageSource produces the messages served by the index action.
type MessageSource interface {
	Messages(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
}

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration // 0 => 5s
	ShutdownTimeout   time.Duration // 0 => 10s
}

type Server struct {
	src MessageSource
	log memocache.Logger
	cfg Config
	r   *renderer
	mux *http.ServeMux
}

func New(src MessageSource, log memocache.Logger, cfg Config) *Server {
	if log == nil {
		log = memocache.NopLogger{}
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{src: src, log: log, cfg: cfg, r: newRenderer()}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /hello", s.handleIndex)
	s.mux.HandleFunc("DELETE /hello", s.handleReset)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.src.Messages(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ct := negotiate(r.Header.Get("Accept"))
	body, err := s.r.render(ct, msgs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.src.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.log.Error("request failed", memocache.Fields{"path": r.URL.Path, "status": code, "err": err})
	w.Header().Set("Content-Type", ctJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: http.StatusText(code)})
}

// statusFor maps a failure to a 5xx. Giving up on a wait is a 503, anything
// the computation itself returned is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, memocache.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request", memocache.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": rec.status,
			"took":   time.Since(start).String(),
		})
	})
}

// Run listens on cfg.Addr and serves until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("listening", memocache.Fields{"addr": ln.Addr().String()})

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down", nil)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
