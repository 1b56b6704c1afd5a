package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpalmerr/statuspoller/internal/store"
	"github.com/jpalmerr/statuspoller/page"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Renderer writes a complete HTML page. *page.Document satisfies it.
type Renderer interface {
	Render(w io.Writer) error
}

// Server serves the live status page and the poll outcome API.
//
// Server provides three endpoints:
//   - GET /: The current state of the document
//   - GET /api/status: The latest poll record as JSON
//   - GET /api/sse: Server-Sent Events stream of poll records
type Server struct {
	store  store.Store
	doc    Renderer
	port   int
	router chi.Router
	logger *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, doc Renderer, port int, logger *slog.Logger) *Server {
	s := &Server{
		store:  st,
		doc:    doc,
		port:   port,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/sse", s.handleSSE)
	})

	s.router = r
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking. The server runs until the context is cancelled,
// then shuts down gracefully. Returns an error if the port cannot be bound.
func (s *Server) Start(ctx context.Context) error {
	return Serve(ctx, s.port, s.router, s.logger)
}

// Serve binds port synchronously and serves handler in a background
// goroutine until ctx is cancelled.
func Serve(ctx context.Context, port int, handler http.Handler, logger *slog.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", port, err)
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so long-running SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handlePage renders the live document.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.doc.Render(&buf); err != nil {
		if errors.Is(err, page.ErrNotLoaded) {
			http.Error(w, "Page not ready", http.StatusServiceUnavailable)
			return
		}
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write page response", "error", err)
	}
}

// handleStatus returns the latest poll record as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.Latest()

	w.Header().Set("Cache-Control", "no-store")
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

// handleSSE streams poll records via Server-Sent Events.
//
// Each write carries a deadline so a slow or vanished client cannot pin the
// handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	if record, ok := s.store.Latest(); ok {
		if data, err := json.Marshal(record); err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
		}
	}

	for {
		select {
		case record, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}
