// Package http serves the JSON API over stored report runs and the report
// trigger endpoint.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"goszakup/internal/amqp"
	"goszakup/internal/core"
	"goszakup/internal/log"
	"goszakup/internal/services"
	"goszakup/internal/storage"
)

type (
	// RunReader reads stored report runs.
	RunReader interface {
		ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
		GetRun(ctx context.Context, id string) (*storage.Run, error)
	}

	// RequestPublisher queues report requests for a worker.
	RequestPublisher interface {
		PublishReportRequest(ctx context.Context, req *amqp.ReportRequest) error
	}

	// InlineRunner runs a report request in the calling goroutine.
	InlineRunner interface {
		Run(ctx context.Context, req *amqp.ReportRequest) (*services.ReportOutcome, bool, error)
	}
)

// Options wires the server. Any dependency may be nil; the endpoints that
// need it answer 503.
type Options struct {
	Addr           string
	DefaultScope   core.Scope
	Runs           RunReader
	Publisher      RequestPublisher
	Runner         InlineRunner
	AllowedOrigins []string
	Logger         *log.Logger
}

type Server struct {
	http.Server
	defaults    core.Scope
	runs        RunReader
	publisher   RequestPublisher
	runner      InlineRunner
	logger      *log.Logger
	limiter     *triggerLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		defaults:    opts.DefaultScope,
		runs:        opts.Runs,
		publisher:   opts.Publisher,
		runner:      opts.Runner,
		logger:      logger,
		limiter:     newTriggerLimiter(),
		metrics:     &securityMetrics{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.securityHeaders)
	api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.handleCreateReport).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           log.Middleware(logger)(c.Handler(r)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown drains the server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
