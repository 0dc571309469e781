package repository

import (
	"database/sql"
	"fmt"

	"lessonlab/internal/database"
)

// KVRepository is the durable key/value store behind progress, auth session and audit persistence
type KVRepository struct {
	db *database.DB
}

func NewKVRepository(db *database.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves the value stored under key; ok is false when the key is absent
func (r *KVRepository) Get(key string) (string, bool, error) {
	var value string
	query := `SELECT store_value FROM kv_store WHERE store_key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set updates or inserts the value for key
func (r *KVRepository) Set(key, value string) error {
	if _, err := r.db.Exec(r.db.Dialect.UpsertKVQuery(), key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (r *KVRepository) Remove(key string) error {
	if _, err := r.db.Exec(`DELETE FROM kv_store WHERE store_key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
