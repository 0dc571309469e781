package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lessonlab/internal/audio"
	"lessonlab/internal/models"
	"lessonlab/internal/security"
	"lessonlab/internal/service"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts []models.Account
}

func (r *memAccountRepo) CreateAccount(a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return errors.New("duplicate email")
		}
	}
	r.accounts = append(r.accounts, *a)
	return nil
}

func (r *memAccountRepo) find(match func(models.Account) bool) *models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if match(a) {
			found := a
			return &found
		}
	}
	return nil
}

func (r *memAccountRepo) GetAccountByEmail(email string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.Email == email }), nil
}

func (r *memAccountRepo) GetAccountByID(id string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.ID == id }), nil
}

func (r *memAccountRepo) ListAccountsCreatedBy(creatorID string) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Account
	for _, a := range r.accounts {
		if a.CreatedBy != nil && *a.CreatedBy == creatorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAccountRepo) ListAccounts() ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Account(nil), r.accounts...), nil
}

func (r *memAccountRepo) DeleteAccount(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type testAPI struct {
	handler  http.Handler
	accounts *service.AccountService
	auth     *service.AuthService
	progress *service.ProgressService
}

func newTestAPI(t *testing.T, loginLimit int) *testAPI {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("mp3:" + r.URL.Query().Get("q")))
	}))
	t.Cleanup(upstream.Close)

	store := &memStore{data: map[string]string{}}
	accounts := service.NewAccountService(&memAccountRepo{}, nil)
	auth := service.NewAuthService(accounts, store, 0, 0, 0)
	progress, err := service.NewProgressService(store)
	if err != nil {
		t.Fatalf("NewProgressService returned error: %v", err)
	}

	tokens := security.NewTokenManager("test-jwt-secret")
	csrf := security.NewCSRFGenerator("test-csrf-secret")
	routes := &Routes{
		Auth:         NewAuthHandler(auth, accounts, tokens, csrf, nil, "", time.Second),
		Therapists:   NewTherapistHandler(auth, time.Second),
		Progress:     NewProgressHandler(progress),
		Speech:       NewSpeechHandler(audio.NewSpeechService(upstream.URL, "en", "", time.Second, false), time.Second),
		Middleware:   NewMiddleware(auth, tokens, csrf),
		LoginLimiter: security.NewRateLimiter(loginLimit, time.Minute),
	}
	mux := http.NewServeMux()
	routes.Register(mux)

	return &testAPI{handler: mux, accounts: accounts, auth: auth, progress: progress}
}

type apiCreds struct {
	token string
	csrf  string
}

func (a *testAPI) request(t *testing.T, method, path string, body interface{}, creds apiCreds) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if creds.token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.token)
	}
	if creds.csrf != "" {
		req.Header.Set(security.CSRFHeader, creds.csrf)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email, password string) apiCreds {
	t.Helper()
	rec := a.request(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, apiCreds{})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var resp loginResponse
	decodeBody(t, rec, &resp)
	return apiCreds{token: resp.Token, csrf: resp.CSRFToken}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}
