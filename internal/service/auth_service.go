package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/security"
)

// AuthState is the gate's position in anonymous → authenticating → authenticated → (expired | loggedOut) → anonymous
type AuthState string

const (
	StateAnonymous      AuthState = "anonymous"
	StateAuthenticating AuthState = "authenticating"
	StateAuthenticated  AuthState = "authenticated"
	StateExpired        AuthState = "expired"
	StateLoggedOut      AuthState = "loggedOut"
)

const (
	DefaultSessionDuration = 8 * time.Hour
	DefaultExtendThreshold = time.Hour
)

// AccountStore is the account surface the gate calls out to
type AccountStore interface {
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	FindParentByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateTherapist(ctx context.Context, req TherapistRequest) (*ProvisionResult, error)
	DeleteTherapist(ctx context.Context, parentID, therapistID string) error
	ListTherapists(ctx context.Context, parentID string) ([]models.Account, error)
}

// AuthService is the role-based gate in front of reports and account provisioning.
// It holds at most one AuthSession, persisted under AuthSessionKey.
type AuthService struct {
	mu              sync.Mutex
	accounts        AccountStore
	store           KeyValueStore
	audit           *AuditLog
	state           AuthState
	current         *models.AuthSession
	sessionDuration time.Duration
	extendThreshold time.Duration
	now             func() time.Time
}

// NewAuthService restores the audit log from store. Call CheckAuthStatus to
// restore a persisted AuthSession.
func NewAuthService(accounts AccountStore, store KeyValueStore, sessionDuration, extendThreshold time.Duration, auditCapacity int) *AuthService {
	if sessionDuration <= 0 {
		sessionDuration = DefaultSessionDuration
	}
	if extendThreshold <= 0 {
		extendThreshold = DefaultExtendThreshold
	}

	s := &AuthService{
		accounts:        accounts,
		store:           store,
		audit:           NewAuditLog(auditCapacity),
		state:           StateAnonymous,
		sessionDuration: sessionDuration,
		extendThreshold: extendThreshold,
		now:             time.Now,
	}
	s.loadAudit()
	return s
}

// Login verifies credentials and opens an AuthSession expiring after the session duration.
// Failed attempts leave the current state and the audit log untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	prev := s.beginAuthenticating()

	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		s.abortAuthenticating(prev)
		return nil, err
	}
	return s.completeLogin(account), nil
}

// LoginWithVerifiedEmail opens an AuthSession for a parent whose email an identity provider has verified
func (s *AuthService) LoginWithVerifiedEmail(ctx context.Context, email string) (*models.AuthSession, error) {
	prev := s.beginAuthenticating()

	account, err := s.accounts.FindParentByEmail(ctx, email)
	if err != nil {
		s.abortAuthenticating(prev)
		return nil, err
	}
	return s.completeLogin(account), nil
}

func (s *AuthService) beginAuthenticating() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = StateAuthenticating
	return prev
}

func (s *AuthService) abortAuthenticating(prev AuthState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticating {
		s.state = prev
	}
}

func (s *AuthService) completeLogin(account *models.Account) *models.AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != nil {
		s.recordLocked(s.current.ID, models.AuditActionLogout, s.current.Role, now)
	}

	session := &models.AuthSession{
		ID:          account.ID,
		SessionID:   security.GenerateSessionID(),
		Name:        account.Name,
		Email:       account.Email,
		Role:        account.Role,
		Permissions: models.PermissionsForRole(account.Role),
		LoginTime:   now,
		ExpiresAt:   now.Add(s.sessionDuration),
	}
	s.current = session
	s.state = StateAuthenticated
	s.persistSessionLocked()
	s.recordLocked(account.ID, models.AuditActionLogin, account.Role, now)

	log.Printf("Login: %s account %s", account.Role, account.ID)
	return cloneAuthSession(session)
}

// Logout clears the AuthSession unconditionally. It always succeeds.
func (s *AuthService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(StateLoggedOut)
}

func (s *AuthService) logoutLocked(next AuthState) {
	if s.current != nil {
		s.recordLocked(s.current.ID, models.AuditActionLogout, s.current.Role, s.now())
		log.Printf("Logout: %s account %s", s.current.Role, s.current.ID)
	}
	s.current = nil
	s.state = next
	if err := s.store.Remove(AuthSessionKey); err != nil {
		log.Printf("Warning: failed to remove stored auth session: %v", err)
	}
}

// CheckAuthStatus re-reads the persisted AuthSession. A live one is restored;
// an expired one is logged out. It reports whether the gate is authenticated.
func (s *AuthService) CheckAuthStatus() (*models.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(AuthSessionKey)
	switch {
	case err != nil:
		// Store unreachable: judge the in-memory session alone
		log.Printf("Warning: failed to read stored auth session: %v", err)
	case !ok:
		s.current = nil
		if s.state != StateAuthenticating {
			s.state = StateAnonymous
		}
	default:
		var stored models.AuthSession
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Printf("Warning: discarding unreadable auth session: %v", err)
			s.current = nil
			s.logoutLocked(StateAnonymous)
			return nil, false
		}
		s.current = &stored
	}

	return s.validLocked()
}

// Current returns the live AuthSession, logging it out first if it has expired
func (s *AuthService) Current() (*models.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

func (s *AuthService) validLocked() (*models.AuthSession, bool) {
	if s.current == nil {
		return nil, false
	}
	if s.current.IsExpired(s.now()) {
		s.logoutLocked(StateExpired)
		return nil, false
	}
	s.state = StateAuthenticated
	return cloneAuthSession(s.current), true
}

// ExtendSession pushes the expiry to now + session duration when less than the
// threshold remains, and reports whether it did
func (s *AuthService) ExtendSession() (*models.AuthSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.validLocked()
	if !ok {
		return nil, false, ErrNotAuthenticated
	}

	now := s.now()
	if s.current.Remaining(now) >= s.extendThreshold {
		return session, false, nil
	}

	s.current.ExpiresAt = now.Add(s.sessionDuration)
	s.persistSessionLocked()
	return cloneAuthSession(s.current), true, nil
}

// State returns the gate's current state
func (s *AuthService) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authorize returns the live session if it grants perm
func (s *AuthService) Authorize(perm models.Permission) (*models.AuthSession, error) {
	session, ok := s.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if !session.HasPermission(perm) {
		return nil, ErrNotAuthorized
	}
	return session, nil
}

func (s *AuthService) requireParent() (*models.AuthSession, error) {
	session, ok := s.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if session.Role != models.RoleParent {
		return nil, ErrNotAuthorized
	}
	return session, nil
}

// CreateTherapistAccount provisions a therapist for the signed-in parent.
// The parent's password is checked again; the session alone is not enough.
func (s *AuthService) CreateTherapistAccount(ctx context.Context, req TherapistRequest) (*ProvisionResult, error) {
	session, err := s.requireParent()
	if err != nil {
		return nil, err
	}
	req.ParentEmail = session.Email
	return s.accounts.CreateTherapist(ctx, req)
}

// DeleteTherapistAccount removes a therapist the signed-in parent created
func (s *AuthService) DeleteTherapistAccount(ctx context.Context, therapistID string) error {
	session, err := s.requireParent()
	if err != nil {
		return err
	}
	return s.accounts.DeleteTherapist(ctx, session.ID, therapistID)
}

// ListTherapists returns the therapists the signed-in parent created
func (s *AuthService) ListTherapists(ctx context.Context) ([]models.Account, error) {
	session, err := s.requireParent()
	if err != nil {
		return nil, err
	}
	return s.accounts.ListTherapists(ctx, session.ID)
}

// AuditEntries returns the retained audit entries, oldest first
func (s *AuthService) AuditEntries() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadAudit()
	return s.audit.Entries()
}

func (s *AuthService) recordLocked(actorID, action string, role models.Role, at time.Time) {
	// Pick up entries another process (labctl backup import) stored since the last write
	s.loadAudit()
	s.audit.Append(models.AuditEntry{
		Timestamp: at,
		ActorID:   actorID,
		Action:    action,
		Role:      role,
	})

	raw, err := json.Marshal(s.audit.Entries())
	if err != nil {
		log.Printf("Warning: failed to encode audit log: %v", err)
		return
	}
	if err := s.store.Set(AuditLogKey, string(raw)); err != nil {
		log.Printf("Warning: failed to persist audit log: %v", err)
	}
}

func (s *AuthService) persistSessionLocked() {
	raw, err := json.Marshal(s.current)
	if err != nil {
		log.Printf("Warning: failed to encode auth session: %v", err)
		return
	}
	if err := s.store.Set(AuthSessionKey, string(raw)); err != nil {
		log.Printf("Warning: failed to persist auth session: %v", err)
	}
}

func (s *AuthService) loadAudit() {
	raw, ok, err := s.store.Get(AuditLogKey)
	if err != nil {
		log.Printf("Warning: failed to read audit log: %v", err)
		return
	}
	if !ok {
		return
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("Warning: discarding unreadable audit log: %v", err)
		return
	}
	s.audit.Load(entries)
}

// ImportAudit merges restored entries ahead of the current ones
func (s *AuthService) ImportAudit(entries []models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadAudit()

	// Entries already held are skipped so re-importing a backup is harmless
	seen := make(map[string]bool)
	var merged []models.AuditEntry
	for _, e := range append(append([]models.AuditEntry{}, entries...), s.audit.Entries()...) {
		key := fmt.Sprintf("%d|%s|%s|%s", e.Timestamp.UnixNano(), e.ActorID, e.Action, e.Role)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, e)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	s.audit.Load(merged)

	raw, err := json.Marshal(s.audit.Entries())
	if err != nil {
		return fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := s.store.Set(AuditLogKey, string(raw)); err != nil {
		return fmt.Errorf("failed to store audit log: %w", err)
	}
	return nil
}

func cloneAuthSession(session *models.AuthSession) *models.AuthSession {
	out := *session
	out.Permissions = append([]models.Permission(nil), session.Permissions...)
	return &out
}
