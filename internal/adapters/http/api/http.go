// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/domain/types"
	"github.com/okian/talentmatch/pkg/logger"
)

// DefaultRequestTimeout bounds a single ranking call.
const DefaultRequestTimeout = 2 * time.Second

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Rank(ctx context.Context, req service.Request) ([]types.RankedTalent, error)
}

// Server wires HTTP routes for the ranking API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	rankHandler   *RankHandler
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout overrides the per-request ranking deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.rankHandler.timeout = d
		}
	}
}

// WithLogger sets the logger used by the rank handler.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.rankHandler.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		rankHandler:   NewRankHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandleRank, "rank"))
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}
