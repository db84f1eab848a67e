package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/medication-reminder/internal/application"
	"github.com/example/medication-reminder/internal/persistence"
)

// UserServiceAPI captures the account operations exposed over HTTP.
type UserServiceAPI interface {
	Register(ctx context.Context, input application.RegisterUserInput) (persistence.User, error)
	GetProfile(ctx context.Context, principal application.Principal) (persistence.User, error)
	UpdateProfile(ctx context.Context, principal application.Principal, input application.UpdateProfileInput) (persistence.User, error)
}

// UserHandler serves the account endpoints.
type UserHandler struct {
	service   UserServiceAPI
	responder responder
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(service UserServiceAPI, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, responder: newResponder(logger)}
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Register handles POST /users. It is the only unauthenticated user endpoint.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	user, err := h.service.Register(ctx, application.RegisterUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, userResponseFrom(user))
}

// GetProfile handles GET /users/me.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	user, err := h.service.GetProfile(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, userResponseFrom(user))
}

// UpdateProfile handles PUT /users/me.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req updateProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	user, err := h.service.UpdateProfile(ctx, principal, application.UpdateProfileInput{DisplayName: req.DisplayName})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, userResponseFrom(user))
}

func userResponseFrom(user persistence.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
