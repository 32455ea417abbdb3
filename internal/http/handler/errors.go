package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

// writeServiceError maps service and repository sentinels to HTTP
// statuses. Anything unrecognized is a 500 with no detail leaked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		response.Error(w, r, http.StatusForbidden, "EMAIL_UNVERIFIED", "email not verified, a new code has been sent", nil)
	case errors.Is(err, service.ErrCodeNotFound):
		response.Error(w, r, http.StatusBadRequest, "CODE_NOT_FOUND", "code not found or expired", nil)
	case errors.Is(err, service.ErrCodeInvalid):
		response.Error(w, r, http.StatusBadRequest, "CODE_INVALID", "incorrect code", nil)
	case errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenStale),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrTokenMalformed):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_OR_EXPIRED_TOKEN", "invalid or expired token", nil)
	case errors.Is(err, service.ErrDeliveryFailed):
		response.Error(w, r, http.StatusBadGateway, "DELIVERY_FAILED", "could not deliver the verification email", nil)
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "not allowed", nil)
	case errors.Is(err, service.ErrRiddleAlreadySolved):
		response.Error(w, r, http.StatusConflict, "ALREADY_SOLVED", "riddle already solved", nil)
	case errors.Is(err, service.ErrWrongAnswer):
		response.Error(w, r, http.StatusBadRequest, "WRONG_ANSWER", "wrong answer", nil)
	case errors.Is(err, repository.ErrAlreadyRegistered):
		response.Error(w, r, http.StatusConflict, "ALREADY_REGISTERED", "already registered for this event", nil)
	case errors.Is(err, repository.ErrRegistrationClosed):
		response.Error(w, r, http.StatusConflict, "REGISTRATION_CLOSED", "registration is closed", nil)
	case errors.Is(err, repository.ErrEventFull):
		response.Error(w, r, http.StatusConflict, "EVENT_FULL", "event is at capacity", nil)
	case errors.Is(err, repository.ErrTeamFull):
		response.Error(w, r, http.StatusConflict, "TEAM_FULL", "team is at capacity", nil)
	case errors.Is(err, repository.ErrConflict):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "resource already exists", nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return false
	}
	return true
}
