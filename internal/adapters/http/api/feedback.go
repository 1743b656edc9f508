package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	service "github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/domain/analytics"
	"github.com/okian/triage/internal/domain/model"
)

// maxFeedbackBody caps POST /api/feedback bodies.
const maxFeedbackBody = 64 << 10

// FeedbackHandler lists logged feedback and accepts new submissions.
type FeedbackHandler struct {
	deps Dependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Dependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

// feedbackRequest mirrors the OpenAPI schema for POST /api/feedback.
type feedbackRequest struct {
	Rating   *int   `json:"rating"`
	Feedback string `json:"feedback"`
	Summary  string `json:"summary"`
}

func (f feedbackRequest) validate() error {
	if f.Rating == nil {
		return errors.New("missing rating")
	}
	return nil
}

type feedbackList struct {
	Count int                   `json:"count"`
	Items []model.FeedbackEvent `json:"items"`
}

// HandleFeedback dispatches GET and POST /api/feedback.
func (h *FeedbackHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		writeMethodNotAllowed(w, "api.feedback", "GET, POST")
	}
}

// handleList returns the filtered log, newest last. limit keeps the most
// recent records.
func (h *FeedbackHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_feedback"
	f, err := filterFromRequest(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}

	events, err := h.deps.Records(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	items := analytics.Apply(events, f)
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	writeJSON(w, http.StatusOK, feedbackList{Count: len(items), Items: items})
}

func (h *FeedbackHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	var req feedbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Process(r.Context(), model.Submission{
		Rating:   *req.Rating,
		Feedback: req.Feedback,
		Summary:  req.Summary,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse(res))
}

type submitResult struct {
	Event       model.FeedbackEvent `json:"event"`
	Escalated   bool                `json:"escalated"`
	Notified    bool                `json:"notified"`
	TicketError string              `json:"ticket_error,omitempty"`
	Breakdown   breakdown           `json:"breakdown"`
}

type breakdown struct {
	RatingSeverity float64 `json:"rating_severity"`
	FeedbackScore  float64 `json:"feedback_score"`
	SummaryScore   float64 `json:"summary_score"`
}

func submitResponse(res service.Result) submitResult {
	return submitResult{
		Event:       res.Event,
		Escalated:   res.Escalated,
		Notified:    res.Notified,
		TicketError: res.TicketError,
		Breakdown: breakdown{
			RatingSeverity: res.Assessment.RatingSeverity,
			FeedbackScore:  res.Assessment.FeedbackScore,
			SummaryScore:   res.Assessment.SummaryScore,
		},
	}
}
