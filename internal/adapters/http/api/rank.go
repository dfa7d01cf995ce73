// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/domain/types"
	"github.com/okian/talentmatch/pkg/logger"
)

// RankHandler handles ranking requests.
type RankHandler struct {
	deps    Dependencies
	timeout time.Duration
	log     logger.Logger
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps, timeout: DefaultRequestTimeout}
}

type rankResponse struct {
	RequestID  string               `json:"request_id"`
	Segment    string               `json:"segment"`
	Industry   string               `json:"industry"`
	BudgetBand string               `json:"budget_band"`
	Count      int                  `json:"count"`
	Results    []types.RankedTalent `json:"results"`
}

// HandleRank handles GET /rank?segment=&industry=&budget_band= requests.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	req, err := parseBrief(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := h.deps.Rank(ctx, req)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError && h.log != nil {
			h.log.Error(ctx, "ranking request failed",
				logger.String("request_id", RequestIDFromContext(ctx)),
				logger.String("segment", req.Segment),
				logger.String("industry", req.Industry),
				logger.Error(err))
		}
		writeError(w, status, code, err)
		return
	}
	if results == nil {
		results = []types.RankedTalent{}
	}
	writeJSON(w, http.StatusOK, rankResponse{
		RequestID:  RequestIDFromContext(ctx),
		Segment:    req.Segment,
		Industry:   req.Industry,
		BudgetBand: req.BudgetBand,
		Count:      len(results),
		Results:    results,
	})
}

func parseBrief(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{
		Segment:    strings.TrimSpace(q.Get("segment")),
		Industry:   strings.TrimSpace(q.Get("industry")),
		BudgetBand: strings.TrimSpace(q.Get("budget_band")),
	}
	switch {
	case req.Segment == "":
		return req, fmt.Errorf("%w: missing segment", ErrBadRequest)
	case req.Industry == "":
		return req, fmt.Errorf("%w: missing industry", ErrBadRequest)
	case req.BudgetBand == "":
		return req, fmt.Errorf("%w: missing budget_band", ErrBadRequest)
	}
	return req, nil
}

// classify maps engine errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusBadRequest, "invalid_brief"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrRepository):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
