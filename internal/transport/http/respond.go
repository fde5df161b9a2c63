package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizmaker-service/internal/domain"
	"quizmaker-service/internal/logging"
)

type messageResponse struct {
	Message string `json:"message"`
}

type upstreamResponse struct {
	Message string `json:"message"`
	Raw     string `json:"raw"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError is the single place where domain errors become HTTP statuses.
func writeError(log logging.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		upstream   *domain.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeMessage(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, domain.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserExists):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
	case errors.Is(err, domain.ErrForbidden):
		// existing clients expect 401 for ownership failures
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, domain.ErrQuizNotFound):
		writeMessage(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, domain.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.As(err, &upstream):
		log.Warn(r.Context(), "unparseable model reply", "path", r.URL.Path, "err", upstream.Err)
		writeJSON(w, http.StatusInternalServerError, upstreamResponse{Message: "Invalid AI response", Raw: upstream.Raw})
	case errors.Is(err, domain.ErrGeneratorDisabled):
		writeMessage(w, http.StatusInternalServerError, "Quiz generation is not configured")
	default:
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON rejects malformed or oversized bodies as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewValidationError("body", "is too large")
		}
		return domain.NewValidationError("body", "must be valid JSON")
	}
	return nil
}
