package handlers

import (
	"context"
	"net/http"
	"time"

	"lessonlab/internal/service"
)

// TherapistHandler lets a signed-in parent manage therapist accounts
type TherapistHandler struct {
	authService *service.AuthService
	callTimeout time.Duration
}

// NewTherapistHandler creates a new therapist handler
func NewTherapistHandler(authService *service.AuthService, callTimeout time.Duration) *TherapistHandler {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &TherapistHandler{authService: authService, callTimeout: callTimeout}
}

// List returns the therapists the parent created
func (h *TherapistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	therapists, err := h.authService.ListTherapists(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"therapists": therapists})
}

// Create provisions a therapist; the body must carry the parent's password
func (h *TherapistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.TherapistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	result, err := h.authService.CreateTherapistAccount(ctx, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// Delete removes a therapist the parent created
func (h *TherapistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	if err := h.authService.DeleteTherapistAccount(ctx, r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
