package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/medication-reminder/internal/application"
)

// AuthServiceAPI captures the session operations exposed over HTTP.
type AuthServiceAPI interface {
	Login(ctx context.Context, email, password string) (application.SessionInfo, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the session endpoints.
type AuthHandler struct {
	service   AuthServiceAPI
	responder responder
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(service AuthServiceAPI, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, responder: newResponder(logger)}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession handles POST /sessions. It is unauthenticated.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
}

// DeleteCurrentSession handles DELETE /sessions/current.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := h.service.Logout(ctx, token); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
