package handlers

import (
	"net/http"

	"lessonlab/internal/models"
	"lessonlab/internal/security"
)

// Routes bundles the handlers served by the API
type Routes struct {
	Auth         *AuthHandler
	Therapists   *TherapistHandler
	Progress     *ProgressHandler
	Speech       *SpeechHandler
	Middleware   *Middleware
	LoginLimiter *security.RateLimiter
}

// Register adds every API route to mux
func (rt *Routes) Register(mux *http.ServeMux) {
	m := rt.Middleware

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", RateLimit(rt.LoginLimiter, rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", RateLimit(rt.LoginLimiter, rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", m.OptionalAuth(rt.Auth.Logout))
	mux.HandleFunc("GET /api/auth/status", m.OptionalAuth(rt.Auth.Status))
	mux.HandleFunc("POST /api/auth/extend", m.RequireAuth(rt.Auth.Extend))
	mux.HandleFunc("GET /api/auth/audit", m.RequirePermission(models.PermManageTherapists, rt.Auth.Audit))
	mux.HandleFunc("GET /auth/providers", rt.Auth.OAuthProviders)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Therapist provisioning
	mux.HandleFunc("GET /api/therapists", m.RequirePermission(models.PermManageTherapists, rt.Therapists.List))
	mux.HandleFunc("POST /api/therapists", m.RequirePermission(models.PermManageTherapists, m.RequireCSRF(rt.Therapists.Create)))
	mux.HandleFunc("DELETE /api/therapists/{id}", m.RequirePermission(models.PermManageTherapists, m.RequireCSRF(rt.Therapists.Delete)))

	// Practice sessions
	mux.HandleFunc("POST /api/sessions/start", rt.Progress.StartSession)
	mux.HandleFunc("POST /api/sessions/attempt", rt.Progress.TrackAttempt)
	mux.HandleFunc("POST /api/sessions/end", rt.Progress.EndSession)
	mux.HandleFunc("GET /api/sessions/active", rt.Progress.ActiveSession)

	// Progress
	mux.HandleFunc("GET /api/progress/report", m.RequirePermission(models.PermViewReports, rt.Progress.Report))
	mux.HandleFunc("GET /api/progress/dashboard", m.RequirePermission(models.PermViewReports, rt.Progress.Dashboard))
	mux.HandleFunc("GET /api/progress/export.csv", m.RequirePermission(models.PermExportData, rt.Progress.ExportCSV))
	mux.HandleFunc("POST /api/progress/clear", m.RequirePermission(models.PermClearData, m.RequireCSRF(rt.Progress.Clear)))

	// Speech
	mux.HandleFunc("POST /api/speech", rt.Speech.Synthesize)
}
