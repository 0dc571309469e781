package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lessonlab/internal/audio"
	"lessonlab/internal/service"
	"lessonlab/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

// respondWithServiceError maps a service error onto its HTTP status.
// Unclassified errors are logged and reported generically.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Message, Field: vErr.Field})
		return
	}

	status := statusForError(err)
	switch status {
	case http.StatusInternalServerError:
		respondWithError(w, status, ErrInternalServerError, "Unhandled error", err)
	case http.StatusServiceUnavailable:
		// The cause stays in the log; clients only learn the service is down
		respondWithError(w, status, "Service unavailable, please try again later", "Upstream failure", err)
	default:
		respondWithJSON(w, status, errorResponse{Error: publicMessage(err)})
	}
}

func statusForError(err error) int {
	var vErr validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrServiceUnavailable), errors.Is(err, audio.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, audio.ErrEmptyText):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrInvalidCredentials,
		service.ErrNotAuthenticated,
		service.ErrNotAuthorized,
		service.ErrNotFound,
		service.ErrAccountExists,
		audio.ErrEmptyText,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}
