package service

import (
	"lessonlab/internal/models"
)

// DefaultAuditCapacity is the number of audit entries kept
const DefaultAuditCapacity = 100

// AuditLog is a fixed-capacity ring buffer; once full, each append evicts the oldest entry
type AuditLog struct {
	entries []models.AuditEntry
	start   int
	size    int
}

// NewAuditLog creates an empty log holding at most capacity entries
func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditLog{entries: make([]models.AuditEntry, capacity)}
}

// Append adds entry as the newest record
func (l *AuditLog) Append(entry models.AuditEntry) {
	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.start+l.size)%capacity] = entry
		l.size++
		return
	}
	l.entries[l.start] = entry
	l.start = (l.start + 1) % capacity
}

// Entries returns the retained records, oldest first
func (l *AuditLog) Entries() []models.AuditEntry {
	out := make([]models.AuditEntry, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}

// Len returns the number of retained entries
func (l *AuditLog) Len() int {
	return l.size
}

// Cap returns the maximum number of retained entries
func (l *AuditLog) Cap() int {
	return len(l.entries)
}

// Load replaces the contents with entries (oldest first), keeping only the newest Cap()
func (l *AuditLog) Load(entries []models.AuditEntry) {
	l.start, l.size = 0, 0
	if len(entries) > len(l.entries) {
		entries = entries[len(entries)-len(l.entries):]
	}
	for _, entry := range entries {
		l.Append(entry)
	}
}
