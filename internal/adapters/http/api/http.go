// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
)

// defaultMaxBodyBytes caps write payloads.
const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	List(ctx context.Context) ([]model.Member, error)
	Get(ctx context.Context, id int) (model.Member, error)
	Create(ctx context.Context, p validation.Payload) (model.Member, error)
	Replace(ctx context.Context, id int, p validation.Payload) (model.Member, bool, error)
	Patch(ctx context.Context, id int, p validation.Payload) (model.Member, error)
	Delete(ctx context.Context, id int) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	membersHandler *MembersHandler

	cors   CORSConfig
	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies for POST, PUT and PATCH.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.membersHandler.maxBodyBytes = n
		}
	}
}

// WithCORS sets the cross-origin policy for /members routes.
func WithCORS(cfg CORSConfig) Option {
	return func(s *Server) {
		s.cors = cfg
	}
}

// WithLogger sets the logger used by the access log middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		membersHandler: NewMembersHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	h := s.membersHandler
	mux.HandleFunc("GET /members", MetricsMiddleware(h.HandleList, "members"))
	mux.HandleFunc("POST /members", MetricsMiddleware(h.HandleCreate, "members"))
	mux.HandleFunc("GET /members/{id}", MetricsMiddleware(h.HandleGet, "member"))
	mux.HandleFunc("PUT /members/{id}", MetricsMiddleware(h.HandleReplace, "member"))
	mux.HandleFunc("PATCH /members/{id}", MetricsMiddleware(h.HandlePatch, "member"))
	mux.HandleFunc("DELETE /members/{id}", MetricsMiddleware(h.HandleDelete, "member"))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

// Handler wraps next with the request id, access log and CORS middleware.
func (s *Server) Handler(next http.Handler) http.Handler {
	l := s.logger
	if l == nil {
		l = logger.Get()
	}
	return RequestIDMiddleware(AccessLogMiddleware(l, CORSMiddleware(s.cors, next)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
