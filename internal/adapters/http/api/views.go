package api

import (
	"bytes"
	"net/http"

	repository "github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/analytics"
	"github.com/okian/triage/internal/domain/model"
)

// ExportFilename is the download name of the filtered CSV export.
const ExportFilename = "filtered_feedback.csv"

// ViewsHandler serves the read-only dashboard views of the feedback log.
type ViewsHandler struct {
	deps Dependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps Dependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

// load reads the log and applies the request filter. It writes the error
// response itself and reports whether the caller should continue.
func (h *ViewsHandler) load(w http.ResponseWriter, r *http.Request, op string, filtered bool) ([]model.FeedbackEvent, bool) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, op, http.MethodGet)
		return nil, false
	}
	f := analytics.Filter{}
	if filtered {
		var err error
		if f, err = filterFromRequest(r); err != nil {
			writeServiceError(w, op, err)
			return nil, false
		}
	}
	events, err := h.deps.Records(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return nil, false
	}
	return analytics.Apply(events, f), true
}

// HandleFilters handles GET /api/filters: selectable values over the whole log.
func (h *ViewsHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	events, ok := h.load(w, r, "api.filters", false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Options(events))
}

// HandleOverview handles GET /api/overview.
func (h *ViewsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	events, ok := h.load(w, r, "api.overview", true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(events))
}

// HandleTrends handles GET /api/trends.
func (h *ViewsHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	events, ok := h.load(w, r, "api.trends", true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.BuildTrends(events))
}

// HandleCategories handles GET /api/categories.
func (h *ViewsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	events, ok := h.load(w, r, "api.categories", true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.CategoryBreakdown(events))
}

// HandleExport handles GET /api/export: the filtered view as a CSV download
// in the log's own column layout.
func (h *ViewsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	events, ok := h.load(w, r, op, true)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := repository.WriteCSV(&buf, events); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
