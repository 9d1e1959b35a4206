package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kaddachi/tasktrack-be/internal/auth"
	"github.com/kaddachi/tasktrack-be/internal/models"
	"github.com/kaddachi/tasktrack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login, logout and token refresh.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens services.TokenServiceProvider
	events services.EventServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens services.TokenServiceProvider, events services.EventServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, events: events}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshPayload carries the refresh token for logout and token refresh.
type RefreshPayload struct {
	Refresh string `json:"refresh"`
}

type authResponse struct {
	models.User
	Tokens models.TokenPair `json:"tokens"`
}

// Register handles new user registration and returns the user together with
// a fresh token pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), payload.Username, payload.Email, payload.Password1, payload.Password2)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Messages)
			return
		}
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrUsernameTaken) {
			writeValidationErrors(w, []string{err.Error()})
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token pair")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.audit(r.Context(), "user.register", "info", fmt.Sprintf("user %s registered", user.Username), user.ID)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: pair})
}

// Login handles user authentication and token pair issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token pair")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.audit(r.Context(), "user.login", "info", fmt.Sprintf("user %s logged in", user.Username), user.ID)
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: pair})
}

// Logout revokes the refresh token supplied in the request body. The access
// token used to authenticate this call stays valid until its natural expiry;
// only the refresh token is blacklisted.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var payload RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token not provided")
		return
	}

	if err := h.tokens.Revoke(r.Context(), payload.Refresh); err != nil {
		// Anything past the missing-field check surfaces as a generic
		// server error, matching the legacy behavior.
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to revoke refresh token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.audit(r.Context(), "user.logout", "info", fmt.Sprintf("user %s logged out", caller.Username), caller.ID)
	w.WriteHeader(http.StatusResetContent)
}

// Refresh mints a new access token from a refresh token. No access token is
// required to call this.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token not provided")
		return
	}

	access, err := h.tokens.Refresh(r.Context(), payload.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken),
			errors.Is(err, services.ErrTokenExpired),
			errors.Is(err, services.ErrTokenRevoked),
			errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			log.Error().Err(err).Msg("Failed to refresh access token")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *AuthHandler) audit(ctx context.Context, eventType, level, message, userID string) {
	if err := h.events.Record(ctx, eventType, level, message, &userID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record audit event")
	}
}
