package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonlab/internal/credentials"
	"lessonlab/internal/models"
	"lessonlab/internal/repository"
	"lessonlab/internal/security"
	"lessonlab/internal/validation"
)

// AccountRepository is the persistence surface AccountService needs
type AccountRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByID(id string) (*models.Account, error)
	ListAccountsCreatedBy(creatorID string) ([]models.Account, error)
	ListAccounts() ([]models.Account, error)
	DeleteAccount(id string) error
}

// Notifier tells a newly provisioned therapist how to sign in
type Notifier interface {
	SendTherapistWelcomeEmail(ctx context.Context, toEmail, therapistName, parentName, temporaryPassword string) error
}

// TherapistRequest carries the parent's own credentials alongside the new therapist's details
type TherapistRequest struct {
	ParentEmail    string `json:"-"`
	ParentPassword string `json:"parent_password"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// ProvisionResult is returned after creating a therapist.
// TemporaryPassword is set only when the password was generated.
type ProvisionResult struct {
	Account           models.Account `json:"account"`
	TemporaryPassword string         `json:"temporary_password,omitempty"`
}

// AccountService is the account store: parent registration, credential checks and therapist provisioning
type AccountService struct {
	repo             AccountRepository
	notifier         Notifier
	now              func() time.Time
	newID            func() string
	generatePassword func() (string, error)
}

// NewAccountService creates an account service; notifier may be nil
func NewAccountService(repo AccountRepository, notifier Notifier) *AccountService {
	return &AccountService{
		repo:             repo,
		notifier:         notifier,
		now:              time.Now,
		newID:            func() string { return uuid.New().String() },
		generatePassword: credentials.GenerateTemporaryPassword,
	}
}

// CreateParent registers a parent account
func (s *AccountService) CreateParent(ctx context.Context, name, email, password string) (*models.Account, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	return s.create(ctx, strings.TrimSpace(name), email, password, models.RoleParent, nil)
}

// Authenticate verifies an email and password pair
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	account, err := s.repo.GetAccountByEmail(validation.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if account == nil || !security.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// FindParentByEmail resolves an externally verified email to a parent account
func (s *AccountService) FindParentByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	account, err := s.repo.GetAccountByEmail(validation.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if account == nil || account.Role != models.RoleParent {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// CreateTherapist provisions a therapist after re-verifying the parent's password.
// An empty therapist password is replaced by a generated temporary one.
func (s *AccountService) CreateTherapist(ctx context.Context, req TherapistRequest) (*ProvisionResult, error) {
	// The parent is verified before anything about the request is reported back
	parent, err := s.Authenticate(ctx, req.ParentEmail, req.ParentPassword)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, ErrNotAuthorized
	}

	if err := validation.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password != "" {
		if err := validation.ValidatePassword(req.Password); err != nil {
			return nil, err
		}
	}

	password := req.Password
	temporary := ""
	if password == "" {
		temporary, err = s.generatePassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		password = temporary
	}

	parentID := parent.ID
	account, err := s.create(ctx, strings.TrimSpace(req.Name), req.Email, password, models.RoleTherapist, &parentID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendTherapistWelcomeEmail(ctx, account.Email, account.Name, parent.Name, temporary); err != nil {
			log.Printf("Warning: failed to send welcome email to therapist %s: %v", account.ID, err)
		}
	}

	return &ProvisionResult{Account: *account, TemporaryPassword: temporary}, nil
}

// ListTherapists returns the therapists provisioned by parentID
func (s *AccountService) ListTherapists(ctx context.Context, parentID string) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	accounts, err := s.repo.ListAccountsCreatedBy(parentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	therapists := []models.Account{}
	for _, account := range accounts {
		if account.Role == models.RoleTherapist {
			therapists = append(therapists, account)
		}
	}
	return therapists, nil
}

// DeleteTherapist removes a therapist owned by parentID.
// Any other target, including another parent's therapist, is ErrNotFound.
func (s *AccountService) DeleteTherapist(ctx context.Context, parentID, therapistID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	account, err := s.repo.GetAccountByID(therapistID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if account == nil || account.Role != models.RoleTherapist || account.CreatedBy == nil || *account.CreatedBy != parentID {
		return ErrNotFound
	}

	if err := s.repo.DeleteAccount(therapistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

func (s *AccountService) create(ctx context.Context, name, email, password string, role models.Role, createdBy *string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	email = validation.NormalizeEmail(email)
	existing, err := s.repo.GetAccountByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.now(),
		CreatedBy:    createdBy,
	}
	if err := s.repo.CreateAccount(account); err != nil {
		// Lost a race with another insert of the same email
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	log.Printf("Created %s account %s", role, account.ID)
	return account, nil
}
