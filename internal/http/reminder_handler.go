package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/medication-reminder/internal/application"
	"github.com/example/medication-reminder/internal/persistence"
)

// ReminderServiceAPI captures the reminder operations exposed over HTTP.
type ReminderServiceAPI interface {
	GenerateOccurrences(ctx context.Context, principal application.Principal, horizonDays int) (int, error)
	ListForDate(ctx context.Context, principal application.Principal, date time.Time) ([]persistence.OccurrenceWithMedication, error)
	ListForRange(ctx context.Context, principal application.Principal, start, end time.Time) ([]persistence.OccurrenceWithMedication, error)
	CompleteOccurrence(ctx context.Context, principal application.Principal, occurrenceID string) (persistence.OccurrenceWithMedication, error)
	UncompleteOccurrence(ctx context.Context, principal application.Principal, occurrenceID string) (persistence.OccurrenceWithMedication, error)
}

// ReminderHandler serves the reminder occurrence endpoints.
type ReminderHandler struct {
	service            ReminderServiceAPI
	defaultHorizonDays int
	responder          responder
}

// NewReminderHandler constructs a ReminderHandler. defaultHorizonDays is used
// when a generate request omits the horizon.
func NewReminderHandler(service ReminderServiceAPI, defaultHorizonDays int, logger *slog.Logger) *ReminderHandler {
	if defaultHorizonDays <= 0 {
		defaultHorizonDays = 7
	}
	return &ReminderHandler{
		service:            service,
		defaultHorizonDays: defaultHorizonDays,
		responder:          newResponder(logger),
	}
}

type generateRequest struct {
	HorizonDays *int `json:"horizon_days"`
}

type generateResponse struct {
	CreatedCount int `json:"created_count"`
}

type occurrenceResponse struct {
	ID             string     `json:"id"`
	MedicationID   string     `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage,omitempty"`
	ScheduledDate  string     `json:"scheduled_date"`
	ScheduledTime  *string    `json:"scheduled_time"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Generate handles POST /reminders/generate.
func (h *ReminderHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	horizonDays := h.defaultHorizonDays
	if r.ContentLength != 0 {
		var req generateRequest
		if err := decodeJSONBody(r, &req); err != nil {
			h.responder.writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		if req.HorizonDays != nil {
			horizonDays = *req.HorizonDays
		}
	}

	created, err := h.service.GenerateOccurrences(ctx, principal, horizonDays)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, generateResponse{CreatedCount: created})
}

// List handles GET /reminders with either ?date= or ?start_date=&end_date=.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	query := r.URL.Query()
	var occurrences []persistence.OccurrenceWithMedication
	var err error

	switch {
	case query.Get("date") != "":
		var date time.Time
		if date, err = parseDateParam(query.Get("date")); err != nil {
			h.responder.writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		occurrences, err = h.service.ListForDate(ctx, principal, date)
	case query.Get("start_date") != "" && query.Get("end_date") != "":
		var start, end time.Time
		if start, err = parseDateParam(query.Get("start_date")); err != nil {
			h.responder.writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		if end, err = parseDateParam(query.Get("end_date")); err != nil {
			h.responder.writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		occurrences, err = h.service.ListForRange(ctx, principal, start, end)
	default:
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingDateParams)
		return
	}

	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	responses := make([]occurrenceResponse, 0, len(occurrences))
	for _, occurrence := range occurrences {
		responses = append(responses, occurrenceResponseFrom(occurrence))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, responses)
}

// Complete handles POST /reminders/{id}/complete.
func (h *ReminderHandler) Complete(w http.ResponseWriter, r *http.Request, occurrenceID string) {
	h.toggleCompletion(w, r, occurrenceID, true)
}

// Uncomplete handles POST /reminders/{id}/uncomplete.
func (h *ReminderHandler) Uncomplete(w http.ResponseWriter, r *http.Request, occurrenceID string) {
	h.toggleCompletion(w, r, occurrenceID, false)
}

func (h *ReminderHandler) toggleCompletion(w http.ResponseWriter, r *http.Request, occurrenceID string, completed bool) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var occurrence persistence.OccurrenceWithMedication
	var err error
	if completed {
		occurrence, err = h.service.CompleteOccurrence(ctx, principal, occurrenceID)
	} else {
		occurrence, err = h.service.UncompleteOccurrence(ctx, principal, occurrenceID)
	}
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, occurrenceResponseFrom(occurrence))
}

func occurrenceResponseFrom(occurrence persistence.OccurrenceWithMedication) occurrenceResponse {
	var scheduledTime *string
	if occurrence.ScheduledTime != "" {
		t := occurrence.ScheduledTime
		scheduledTime = &t
	}
	return occurrenceResponse{
		ID:             occurrence.ID,
		MedicationID:   occurrence.MedicationID,
		MedicationName: occurrence.MedicationName,
		Dosage:         occurrence.Dosage,
		ScheduledDate:  occurrence.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:  scheduledTime,
		Completed:      occurrence.Completed,
		CompletedAt:    occurrence.CompletedAt,
		CreatedAt:      occurrence.CreatedAt,
		UpdatedAt:      occurrence.UpdatedAt,
	}
}
