package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/medication-reminder/internal/application"
	"github.com/example/medication-reminder/internal/persistence"
)

// MedicationServiceAPI captures the medication operations exposed over HTTP.
type MedicationServiceAPI interface {
	CreateMedication(ctx context.Context, principal application.Principal, input application.MedicationInput) (persistence.Medication, error)
	UpdateMedication(ctx context.Context, principal application.Principal, medicationID string, input application.MedicationInput) (persistence.Medication, error)
	GetMedication(ctx context.Context, principal application.Principal, medicationID string) (persistence.Medication, error)
	ListMedications(ctx context.Context, principal application.Principal) ([]persistence.Medication, error)
	DeleteMedication(ctx context.Context, principal application.Principal, medicationID string) error
}

// MedicationHandler serves the medication CRUD endpoints.
type MedicationHandler struct {
	service   MedicationServiceAPI
	responder responder
}

// NewMedicationHandler constructs a MedicationHandler.
func NewMedicationHandler(service MedicationServiceAPI, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{service: service, responder: newResponder(logger)}
}

type medicationRequest struct {
	Name       string   `json:"name"`
	Dosage     string   `json:"dosage"`
	Notes      string   `json:"notes"`
	Barcode    string   `json:"barcode"`
	Frequency  string   `json:"frequency"`
	DailyTimes []string `json:"daily_times"`
	WeeklyDays []int    `json:"weekly_days"`
	StartDate  string   `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	Active     *bool    `json:"active"`
}

type medicationResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Dosage     string    `json:"dosage,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Barcode    string    `json:"barcode,omitempty"`
	Frequency  string    `json:"frequency"`
	DailyTimes []string  `json:"daily_times"`
	WeeklyDays []int     `json:"weekly_days"`
	StartDate  string    `json:"start_date"`
	EndDate    *string   `json:"end_date"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Create handles POST /medications.
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	input, err := h.decodeMedicationInput(r)
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	medication, err := h.service.CreateMedication(ctx, principal, input)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, medicationResponseFrom(medication))
}

// List handles GET /medications.
func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	medications, err := h.service.ListMedications(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	responses := make([]medicationResponse, 0, len(medications))
	for _, medication := range medications {
		responses = append(responses, medicationResponseFrom(medication))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, responses)
}

// Get handles GET /medications/{id}.
func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request, medicationID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	medication, err := h.service.GetMedication(ctx, principal, medicationID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, medicationResponseFrom(medication))
}

// Update handles PUT /medications/{id}.
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request, medicationID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	input, err := h.decodeMedicationInput(r)
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	medication, err := h.service.UpdateMedication(ctx, principal, medicationID, input)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, medicationResponseFrom(medication))
}

// Delete handles DELETE /medications/{id}.
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request, medicationID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := h.service.DeleteMedication(ctx, principal, medicationID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func (h *MedicationHandler) decodeMedicationInput(r *http.Request) (application.MedicationInput, error) {
	var req medicationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		return application.MedicationInput{}, err
	}

	input := application.MedicationInput{
		Name:       req.Name,
		Dosage:     req.Dosage,
		Notes:      req.Notes,
		Barcode:    req.Barcode,
		Frequency:  req.Frequency,
		DailyTimes: req.DailyTimes,
		WeeklyDays: req.WeeklyDays,
		Active:     true,
	}
	if req.Active != nil {
		input.Active = *req.Active
	}

	if req.StartDate != "" {
		start, err := parseDateParam(req.StartDate)
		if err != nil {
			return application.MedicationInput{}, err
		}
		input.StartDate = start
	}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := parseDateParam(*req.EndDate)
		if err != nil {
			return application.MedicationInput{}, err
		}
		input.EndDate = &end
	}
	return input, nil
}

func medicationResponseFrom(medication persistence.Medication) medicationResponse {
	var endDate *string
	if medication.EndDate != nil {
		formatted := medication.EndDate.Format("2006-01-02")
		endDate = &formatted
	}

	dailyTimes := medication.DailyTimes
	if dailyTimes == nil {
		dailyTimes = []string{}
	}
	weeklyDays := medication.WeeklyDays
	if weeklyDays == nil {
		weeklyDays = []int{}
	}

	return medicationResponse{
		ID:         medication.ID,
		Name:       medication.Name,
		Dosage:     medication.Dosage,
		Notes:      medication.Notes,
		Barcode:    medication.Barcode,
		Frequency:  medication.Frequency,
		DailyTimes: dailyTimes,
		WeeklyDays: weeklyDays,
		StartDate:  medication.StartDate.Format("2006-01-02"),
		EndDate:    endDate,
		Active:     medication.Active,
		CreatedAt:  medication.CreatedAt,
		UpdatedAt:  medication.UpdatedAt,
	}
}
