package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "statedeck/pkg/domain-errors"
)

// Category classifies event types by the dashboard section that cares about them.
type Category string

const (
	// CategorySecurity covers credential and access events shown in the auth timeline.
	CategorySecurity Category = "security"
	// CategoryCompliance covers state and permission changes kept for audit history.
	CategoryCompliance Category = "compliance"
	// CategoryOperations covers routine activity. Unknown event types land here.
	CategoryOperations Category = "operations"
)

// EventType names what happened. Filtering matches it exactly.
type EventType string

const (
	// Credential events
	EventAPIKeyCreated  EventType = "api_key_created"
	EventAPIKeyRevoked  EventType = "api_key_revoked"
	EventAPIKeyRotated  EventType = "api_key_rotated"
	EventTokenIssued    EventType = "token_issued"
	EventTokenRefreshed EventType = "token_refreshed"
	EventTokenRevoked   EventType = "token_revoked"

	// Session events
	EventLogin       EventType = "login"
	EventLogout      EventType = "logout"
	EventLoginFailed EventType = "login_failed"

	// State events
	EventStateCreated  EventType = "state_created"
	EventStateUpdated  EventType = "state_updated"
	EventStateDeleted  EventType = "state_deleted"
	EventStateLocked   EventType = "state_locked"
	EventStateUnlocked EventType = "state_unlocked"

	// Workspace events
	EventWorkspaceCreated  EventType = "workspace_created"
	EventPermissionChanged EventType = "permission_changed"
)

var eventCategories = map[EventType]Category{
	EventAPIKeyCreated:     CategorySecurity,
	EventAPIKeyRevoked:     CategorySecurity,
	EventAPIKeyRotated:     CategorySecurity,
	EventTokenRevoked:      CategorySecurity,
	EventLoginFailed:       CategorySecurity,
	EventPermissionChanged: CategorySecurity,

	EventStateCreated:  CategoryCompliance,
	EventStateUpdated:  CategoryCompliance,
	EventStateDeleted:  CategoryCompliance,
	EventStateLocked:   CategoryCompliance,
	EventStateUnlocked: CategoryCompliance,

	EventTokenIssued:      CategoryOperations,
	EventTokenRefreshed:   CategoryOperations,
	EventLogin:            CategoryOperations,
	EventLogout:           CategoryOperations,
	EventWorkspaceCreated: CategoryOperations,
}

// Category returns the category for this event type.
func (t EventType) Category() Category {
	if cat, ok := eventCategories[t]; ok {
		return cat
	}
	return CategoryOperations
}

// Label turns "api_key_created" into "Api key created" for list headers.
func (t EventType) Label() string {
	s := strings.ReplaceAll(string(t), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Severity levels for display coloring.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Status is the outcome of the recorded action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPending Status = "pending"
)

// Entry is one audit or auth event as rendered by the dashboard timelines.
type Entry struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Type        EventType      `json:"type"`
	Description string         `json:"description"`
	User        string         `json:"user"`
	Workspace   string         `json:"workspace,omitempty"`
	Severity    Severity       `json:"severity,omitempty"`
	Status      Status         `json:"status,omitempty"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	Resource    string         `json:"resource,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Validate checks the fields every consumer relies on.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return dErrors.New(dErrors.CodeValidation, "entry id is required")
	}
	if e.Timestamp.IsZero() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("entry %s: timestamp is required", e.ID))
	}
	if e.Type == "" {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("entry %s: type is required", e.ID))
	}
	return nil
}

// ParseTimestamp parses an ISO-8601 timestamp. Both RFC 3339 and its
// fractional-second form are accepted.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("invalid timestamp %q", s))
	}
	return t, nil
}

// EnsureUniqueIDs reports the first duplicated ID in a collection.
func EnsureUniqueIDs(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("duplicate entry id %q", e.ID))
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
