package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/repository"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet    bool
	failRemove bool
	sets       int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
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
	s.sets++
	if s.failSet {
		return errors.New("disk full")
	}
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRemove {
		return errors.New("disk read-only")
	}
	delete(s.data, key)
	return nil
}

type accountStubRepo struct {
	byID map[string]*models.Account
	err  error
	// createErr fails the next CreateAccount after its lookups succeed
	createErr error
	// rejectEmail makes any insert of that address fail
	rejectEmail string
}

func newAccountStubRepo() *accountStubRepo {
	return &accountStubRepo{byID: map[string]*models.Account{}}
}

func (r *accountStubRepo) CreateAccount(a *models.Account) error {
	if r.err != nil {
		return r.err
	}
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if a.Email == r.rejectEmail {
		return errors.New("insert rejected")
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return fmt.Errorf("failed to create account: %w", repository.ErrDuplicateAccount)
		}
	}
	copy := *a
	r.byID[a.ID] = &copy
	return nil
}

func (r *accountStubRepo) GetAccountByEmail(email string) (*models.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.byID {
		if a.Email == email {
			copy := *a
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *accountStubRepo) GetAccountByID(id string) (*models.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	if a, ok := r.byID[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (r *accountStubRepo) ListAccountsCreatedBy(creatorID string) ([]models.Account, error) {
	var out []models.Account
	for _, a := range r.byID {
		if a.CreatedBy != nil && *a.CreatedBy == creatorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *accountStubRepo) ListAccounts() ([]models.Account, error) {
	var out []models.Account
	for _, a := range r.byID {
		if a.CreatedBy == nil {
			out = append(out, *a)
		}
	}
	for _, a := range r.byID {
		if a.CreatedBy != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *accountStubRepo) DeleteAccount(id string) error {
	if _, ok := r.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.byID, id)
	for childID, a := range r.byID {
		if a.CreatedBy != nil && *a.CreatedBy == id {
			delete(r.byID, childID)
		}
	}
	return nil
}

// ImportAccounts stages the batch on a copy and keeps it only if every insert succeeds
func (r *accountStubRepo) ImportAccounts(accounts []models.Account) (int, int, error) {
	if r.err != nil {
		return 0, 0, r.err
	}
	staged := &accountStubRepo{byID: map[string]*models.Account{}, rejectEmail: r.rejectEmail}
	for id, a := range r.byID {
		staged.byID[id] = a
	}

	ordered := append([]models.Account(nil), accounts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedBy == nil && ordered[j].CreatedBy != nil
	})

	imported, skipped := 0, 0
	for i := range ordered {
		a := &ordered[i]
		byEmail, _ := staged.GetAccountByEmail(a.Email)
		byID, _ := staged.GetAccountByID(a.ID)
		creatorMissing := false
		if a.CreatedBy != nil {
			creator, _ := staged.GetAccountByID(*a.CreatedBy)
			creatorMissing = creator == nil
		}
		if byEmail != nil || byID != nil || !a.Role.Valid() || creatorMissing {
			skipped++
			continue
		}
		if err := staged.CreateAccount(a); err != nil {
			return 0, 0, err
		}
		imported++
	}

	r.byID = staged.byID
	return imported, skipped, nil
}

type notifierStub struct {
	calls     int
	lastTo    string
	lastTemp  string
	returnErr error
}

func (n *notifierStub) SendTherapistWelcomeEmail(ctx context.Context, toEmail, therapistName, parentName, temporaryPassword string) error {
	n.calls++
	n.lastTo = toEmail
	n.lastTemp = temporaryPassword
	return n.returnErr
}

// fakeClock is a settable time source shared by services under test
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProgressService(t testing.TB, store KeyValueStore, clock *fakeClock) *ProgressService {
	t.Helper()
	svc, err := NewProgressService(store)
	if err != nil {
		t.Fatalf("NewProgressService returned error: %v", err)
	}
	svc.now = clock.Now
	return svc
}
