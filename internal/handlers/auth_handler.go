package handlers

import (
	"context"
	"net/http"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/security"
	"lessonlab/internal/service"
)

const defaultCallTimeout = 10 * time.Second

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	accountService       *service.AccountService
	tokens               *security.TokenManager
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	callTimeout          time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService, tokens *security.TokenManager, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, callTimeout time.Duration) *AuthHandler {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &AuthHandler{
		authService:          authService,
		accountService:       accountService,
		tokens:               tokens,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		callTimeout:          callTimeout,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Session   *models.AuthSession `json:"session"`
	Token     string              `json:"token"`
	CSRFToken string              `json:"csrf_token"`
}

type statusResponse struct {
	Authenticated bool                `json:"authenticated"`
	State         service.AuthState   `json:"state"`
	Session       *models.AuthSession `json:"session,omitempty"`
}

type extendResponse struct {
	Extended bool                `json:"extended"`
	Session  *models.AuthSession `json:"session"`
	Token    string              `json:"token,omitempty"`
}

// Register creates a parent account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	account, err := h.accountService.CreateParent(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, account)
}

// Login signs a parent or therapist in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithSession(w, r, session)
}

// respondWithSession issues the token and CSRF token for a new AuthSession
func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, session *models.AuthSession) {
	token, csrfToken, err := h.issueTokens(session)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing token", err)
		return
	}

	http.SetCookie(w, security.NewTokenCookie(r, token, session.ExpiresAt))
	respondWithJSON(w, http.StatusOK, loginResponse{Session: session, Token: token, CSRFToken: csrfToken})
}

func (h *AuthHandler) issueTokens(session *models.AuthSession) (string, string, error) {
	token, err := h.tokens.Sign(session.SessionID, session.ID, string(session.Role), session.ExpiresAt)
	if err != nil {
		return "", "", err
	}
	csrfToken, err := h.csrf.GenerateToken(session.SessionID)
	if err != nil {
		return "", "", err
	}
	return token, csrfToken, nil
}

// Logout ends the caller's AuthSession
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Only the holder of the live session may end it; with none live this is a no-op
	if _, live := h.authService.Current(); live && GetSessionFromContext(r.Context()) == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	h.authService.Logout()
	http.SetCookie(w, security.ClearTokenCookie(r))
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Status reports the gate state. Session details are returned only to the
// client holding the live session's token.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.authService.CheckAuthStatus()

	resp := statusResponse{State: h.authService.State()}
	if session := GetSessionFromContext(r.Context()); session != nil {
		resp.Authenticated = true
		resp.Session = session
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// Extend pushes the session expiry out when it is close, re-issuing the token
func (h *AuthHandler) Extend(w http.ResponseWriter, r *http.Request) {
	session, extended, err := h.authService.ExtendSession()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	resp := extendResponse{Extended: extended, Session: session}
	if extended {
		token, err := h.tokens.Sign(session.SessionID, session.ID, string(session.Role), session.ExpiresAt)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing token", err)
			return
		}
		http.SetCookie(w, security.NewTokenCookie(r, token, session.ExpiresAt))
		resp.Token = token
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// Audit returns the retained login/logout entries
func (h *AuthHandler) Audit(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"entries": h.authService.AuditEntries()})
}
