package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"

	"lessonlab/internal/database"
	"lessonlab/internal/models"
)

// ErrDuplicateAccount is returned when an insert collides with an existing ID or email
var ErrDuplicateAccount = errors.New("account already exists")

// AccountRepository handles database operations for parent and therapist accounts
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, role, created_by, created_at`

// CreateAccount inserts a new account
func (r *AccountRepository) CreateAccount(account *models.Account) error {
	return insertAccount(r.db, account)
}

// GetAccountByEmail retrieves an account by email address
func (r *AccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	return getAccount(r.db, `email = ?`, email)
}

// GetAccountByID retrieves an account by ID
func (r *AccountRepository) GetAccountByID(id string) (*models.Account, error) {
	return getAccount(r.db, `id = ?`, id)
}

// ImportAccounts inserts restored accounts in one transaction, parents before
// the therapists they created. Accounts whose ID or email already exists, with
// an unknown role, or whose creator is missing are skipped. Any failure rolls
// back the whole batch.
func (r *AccountRepository) ImportAccounts(accounts []models.Account) (imported, skipped int, err error) {
	ordered := append([]models.Account(nil), accounts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedBy == nil && ordered[j].CreatedBy != nil
	})

	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range ordered {
		account := &ordered[i]
		ok, err := importable(tx, account)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			skipped++
			continue
		}
		if err := insertAccount(tx, account); err != nil {
			return 0, 0, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return imported, skipped, nil
}

func importable(q database.DBTX, account *models.Account) (bool, error) {
	if !account.Role.Valid() {
		return false, nil
	}
	byEmail, err := getAccount(q, `email = ?`, account.Email)
	if err != nil {
		return false, err
	}
	byID, err := getAccount(q, `id = ?`, account.ID)
	if err != nil {
		return false, err
	}
	if byEmail != nil || byID != nil {
		return false, nil
	}
	if account.CreatedBy != nil {
		creator, err := getAccount(q, `id = ?`, *account.CreatedBy)
		if err != nil {
			return false, err
		}
		if creator == nil {
			log.Printf("Warning: skipping therapist %s, creator %s not found", account.ID, *account.CreatedBy)
			return false, nil
		}
	}
	return true, nil
}

func insertAccount(q database.DBTX, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, role, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.Exec(query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		nullString(account.CreatedBy),
		account.CreatedAt,
	)
	if err != nil {
		if q.GetDialect().IsUniqueViolation(err) {
			return fmt.Errorf("failed to create account %s: %w", account.Email, ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func getAccount(q database.DBTX, where string, arg interface{}) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	account, err := scanAccount(q.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// ListAccountsCreatedBy returns the accounts provisioned by creatorID, oldest first
func (r *AccountRepository) ListAccountsCreatedBy(creatorID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE created_by = ? ORDER BY created_at, email`
	rows, err := r.db.Query(query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListAccounts returns every account, parents before the therapists they created
func (r *AccountRepository) ListAccounts() ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY CASE WHEN created_by IS NULL THEN 0 ELSE 1 END, created_at, email`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// DeleteAccount removes an account; therapists it created are removed by cascade
func (r *AccountRepository) DeleteAccount(id string) error {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var role string
	var createdBy sql.NullString
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&createdBy,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Role = models.Role(role)
	if createdBy.Valid {
		creator := createdBy.String
		account.CreatedBy = &creator
	}
	return account, nil
}

func collectAccounts(rows *sql.Rows) ([]models.Account, error) {
	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
