package handlers

import (
	"fmt"
	"net/http"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/service"
	"lessonlab/internal/validation"
)

// ProgressHandler exposes the session recorder and progress reports
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type startSessionRequest struct {
	Mode models.Mode `json:"mode"`
}

type attemptRequest struct {
	Word       string `json:"word"`
	Correct    bool   `json:"correct"`
	Difficulty int    `json:"difficulty"`
}

type sessionResponse struct {
	Active  bool            `json:"active"`
	Session *models.Session `json:"session,omitempty"`
}

type attemptResponse struct {
	Tracked bool            `json:"tracked"`
	Session *models.Session `json:"session,omitempty"`
}

type endSessionResponse struct {
	Ended    bool                 `json:"ended"`
	Progress *models.ProgressData `json:"progress,omitempty"`
}

// StartSession begins a practice session in the requested mode
func (h *ProgressHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.progressService.StartSession(req.Mode)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sessionResponse{Active: true, Session: &session})
}

// TrackAttempt records one word attempt. Without a live session nothing is recorded.
func (h *ProgressHandler) TrackAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateWord(req.Word); err != nil {
		respondWithServiceError(w, err)
		return
	}

	session, ok := h.progressService.TrackAttempt(req.Word, req.Correct, req.Difficulty)
	if !ok {
		respondWithJSON(w, http.StatusOK, attemptResponse{Tracked: false})
		return
	}

	respondWithJSON(w, http.StatusOK, attemptResponse{Tracked: true, Session: &session})
}

// EndSession closes the live session and folds it into progress
func (h *ProgressHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	progress, ok := h.progressService.EndSession()
	if !ok {
		respondWithJSON(w, http.StatusOK, endSessionResponse{Ended: false})
		return
	}

	respondWithJSON(w, http.StatusOK, endSessionResponse{Ended: true, Progress: &progress})
}

// ActiveSession returns the live session, if any
func (h *ProgressHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.progressService.ActiveSession()
	if !ok {
		respondWithJSON(w, http.StatusOK, sessionResponse{Active: false})
		return
	}

	respondWithJSON(w, http.StatusOK, sessionResponse{Active: true, Session: &session})
}

// Report generates a progress report; timeframe defaults to week
func (h *ProgressHandler) Report(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("timeframe")
	if raw == "" {
		raw = string(models.TimeframeWeek)
	}
	timeframe, err := models.ParseTimeframe(raw)
	if err != nil {
		respondWithServiceError(w, validation.ValidationError{Field: "timeframe", Message: err.Error()})
		return
	}

	respondWithJSON(w, http.StatusOK, h.progressService.GenerateReport(timeframe))
}

// Dashboard returns the at-a-glance progress summary
func (h *ProgressHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progressService.Dashboard())
}

// ExportCSV downloads every recorded attempt as CSV
func (h *ProgressHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	csv := h.progressService.ExportCSV()

	filename := fmt.Sprintf("spelling-progress-%s.csv", models.DayKey(time.Now()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// Clear erases all progress data
func (h *ProgressHandler) Clear(w http.ResponseWriter, r *http.Request) {
	progress := h.progressService.ClearAllData()
	respondWithJSON(w, http.StatusOK, progress)
}
