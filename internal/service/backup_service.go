package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"lessonlab/internal/models"
)

const backupVersion = "1.0"

// BackupData is the complete backup document
type BackupData struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Accounts   []AccountBackup     `json:"accounts"`
	Progress   models.ProgressData `json:"progress"`
	AuditLog   []models.AuditEntry `json:"audit_log"`
}

// AccountBackup is an account record including its password hash
type AccountBackup struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	Role         models.Role `json:"role"`
	CreatedBy    *string     `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AccountArchive is the account surface backup and restore needs.
// ImportAccounts applies the whole batch or nothing.
type AccountArchive interface {
	ListAccounts() ([]models.Account, error)
	ImportAccounts(accounts []models.Account) (imported, skipped int, err error)
}

// AuditSource exposes the audit log for backup and restore
type AuditSource interface {
	AuditEntries() []models.AuditEntry
	ImportAudit(entries []models.AuditEntry) error
}

// BackupImportResult counts what an import changed
type BackupImportResult struct {
	AccountsImported int
	AccountsSkipped  int
	Sessions         int
	AuditEntries     int
}

// BackupService handles backup and restore of accounts, progress and the audit log
type BackupService struct {
	accounts AccountArchive
	progress *ProgressService
	audit    AuditSource
	now      func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(accounts AccountArchive, progress *ProgressService, audit AuditSource) *BackupService {
	return &BackupService{accounts: accounts, progress: progress, audit: audit, now: time.Now}
}

// Export writes a backup to the file at outputPath
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	log.Printf("Backup exported to %s: %d accounts, %d sessions, %d audit entries",
		outputPath, len(backup.Accounts), len(backup.Progress.Sessions), len(backup.AuditLog))
	return nil
}

// ExportToWriter encodes a backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	accounts, err := s.accounts.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}

	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: s.now(),
		Accounts:   make([]AccountBackup, 0, len(accounts)),
		Progress:   s.progress.Progress(),
		AuditLog:   s.audit.AuditEntries(),
	}
	for _, a := range accounts {
		backup.Accounts = append(backup.Accounts, AccountBackup{
			ID:           a.ID,
			Name:         a.Name,
			Email:        a.Email,
			PasswordHash: a.PasswordHash,
			Role:         a.Role,
			CreatedBy:    a.CreatedBy,
			CreatedAt:    a.CreatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores the backup file at inputPath
func (s *BackupService) Import(inputPath string, replaceProgress bool) (*BackupImportResult, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, replaceProgress)
}

// ImportFromReader restores a backup. Accounts whose email or ID already exists
// are skipped. Sessions are merged by ID and statistics rebuilt from them,
// unless replaceProgress discards the current sessions first.
func (s *BackupService) ImportFromReader(r io.Reader, replaceProgress bool) (*BackupImportResult, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	result := &BackupImportResult{}
	if err := s.importAccounts(backup.Accounts, result); err != nil {
		return nil, fmt.Errorf("failed to import accounts: %w", err)
	}

	var current []models.Session
	if !replaceProgress {
		current = s.progress.Progress().Sessions
	}
	rebuilt := RebuildProgress(append(current, backup.Progress.Sessions...))
	if err := s.progress.ReplaceProgress(*rebuilt); err != nil {
		return nil, fmt.Errorf("failed to import progress: %w", err)
	}
	result.Sessions = len(rebuilt.Sessions)

	if err := s.audit.ImportAudit(backup.AuditLog); err != nil {
		return nil, fmt.Errorf("failed to import audit log: %w", err)
	}
	result.AuditEntries = len(backup.AuditLog)

	log.Printf("Backup import completed: %d accounts imported, %d skipped, %d sessions",
		result.AccountsImported, result.AccountsSkipped, result.Sessions)
	return result, nil
}

func (s *BackupService) importAccounts(backups []AccountBackup, result *BackupImportResult) error {
	accounts := make([]models.Account, 0, len(backups))
	for _, a := range backups {
		accounts = append(accounts, models.Account{
			ID:           a.ID,
			Name:         a.Name,
			Email:        a.Email,
			PasswordHash: a.PasswordHash,
			Role:         a.Role,
			CreatedBy:    a.CreatedBy,
			CreatedAt:    a.CreatedAt,
		})
	}

	imported, skipped, err := s.accounts.ImportAccounts(accounts)
	if err != nil {
		return err
	}
	result.AccountsImported = imported
	result.AccountsSkipped = skipped
	return nil
}

// RebuildProgress folds sessions, de-duplicated by ID and ordered by start
// time, into fresh ProgressData. Sessions without an end time are dropped.
func RebuildProgress(sessions []models.Session) *models.ProgressData {
	seen := make(map[string]bool, len(sessions))
	unique := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ID != "" && seen[session.ID] {
			continue
		}
		if !session.IsClosed() {
			log.Printf("Warning: skipping unfinished session %s", session.ID)
			continue
		}
		seen[session.ID] = true
		unique = append(unique, session)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].StartTime.Before(unique[j].StartTime)
	})

	data := models.NewProgressData()
	for _, session := range unique {
		if session.WordDetails == nil {
			session.WordDetails = map[string]models.WordDetail{}
		}
		Fold(data, session)
	}
	return data
}
