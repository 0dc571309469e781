package models

import "time"

// Role is the single role an account holds
type Role string

const (
	RoleParent    Role = "parent"
	RoleTherapist Role = "therapist"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleTherapist
}

// Permission names an action an AuthSession may perform
type Permission string

const (
	PermViewReports      Permission = "view_reports"
	PermExportData       Permission = "export_data"
	PermClearData        Permission = "clear_data"
	PermManageTherapists Permission = "manage_therapists"
)

// PermissionsForRole derives the permission set of a role
func PermissionsForRole(role Role) []Permission {
	switch role {
	case RoleParent:
		return []Permission{PermViewReports, PermExportData, PermClearData, PermManageTherapists}
	case RoleTherapist:
		return []Permission{PermViewReports, PermExportData}
	default:
		return nil
	}
}

// Account represents a parent or therapist login
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    *string   `json:"createdBy,omitempty"`
}

// AuthSession is the time-boxed credential proof held after a successful login
type AuthSession struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
	LoginTime   time.Time    `json:"loginTime"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// IsExpired checks if the session has expired at now
func (s *AuthSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining returns how long the session stays valid after now
func (s *AuthSession) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// HasPermission reports whether the session grants p
func (s *AuthSession) HasPermission(p Permission) bool {
	for _, granted := range s.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// AuditEntry records one login or logout transition
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	Role      Role      `json:"role"`
}

const (
	AuditActionLogin  = "login"
	AuditActionLogout = "logout"
)
