// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/triage/internal/adapters/repository"
	service "github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/domain/analytics"
	"github.com/okian/triage/internal/domain/escalation"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Process runs one submission through the pipeline.
	Process(ctx context.Context, sub model.Submission) (service.Result, error)

	// Records returns the feedback log in append order.
	Records(ctx context.Context) ([]model.FeedbackEvent, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	feedbackHandler  *FeedbackHandler
	viewsHandler     *ViewsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		feedbackHandler:  NewFeedbackHandler(deps),
		viewsHandler:     NewViewsHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/feedback", MetricsMiddleware(s.feedbackHandler.HandleFeedback, "feedback"))
	mux.HandleFunc("/api/filters", MetricsMiddleware(s.viewsHandler.HandleFilters, "filters"))
	mux.HandleFunc("/api/overview", MetricsMiddleware(s.viewsHandler.HandleOverview, "overview"))
	mux.HandleFunc("/api/trends", MetricsMiddleware(s.viewsHandler.HandleTrends, "trends"))
	mux.HandleFunc("/api/categories", MetricsMiddleware(s.viewsHandler.HandleCategories, "categories"))
	mux.HandleFunc("/api/export", MetricsMiddleware(s.viewsHandler.HandleExport, "export"))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeMethodNotAllowed answers 405 with the allowed methods.
func writeMethodNotAllowed(w http.ResponseWriter, op string, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// writeServiceError maps pipeline and log errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, severity.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, analytics.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, severity.ErrClassifier),
		errors.Is(err, escalation.ErrTopicClassifier),
		errors.Is(err, escalation.ErrNoCategory):
		writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, repository.ErrLogNotFound),
		errors.Is(err, repository.ErrMalformedHeader),
		errors.Is(err, repository.ErrMalformedRecord):
		writeError(w, http.StatusServiceUnavailable, "log_unavailable", WrapKind(op, ErrLogUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// filterFromRequest reads from, to, sentiment and category query parameters.
// sentiment and category may be repeated or comma separated.
func filterFromRequest(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	return analytics.ParseFilter(q.Get("from"), q.Get("to"), q["sentiment"], q["category"])
}
