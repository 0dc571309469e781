package service

// KeyValueStore is the durable key/value surface behind progress, auth session and audit state
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Fixed keys for JSON documents kept in the KeyValueStore
const (
	ProgressKey    = "spelling_progress"
	AuthSessionKey = "auth_session"
	AuditLogKey    = "auth_audit_log"
)
