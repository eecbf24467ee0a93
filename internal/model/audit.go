package model

import (
	"strings"
	"time"
)

// Severity is the level of an audit entry.
type Severity string

const (
	SeverityDefault Severity = "DEFAULT"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Defaults substituted when a stored audit entry lacks a field.
const (
	DefaultActor  = "System"
	DefaultAction = "Unknown"
)

// ParseSeverity maps a client-supplied level to a Severity.
// Unknown or empty values fall back to INFO.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityWarning:
		return SeverityWarning
	case SeverityError:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID        string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"level"`
	Actor     string    `json:"user"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
}
