package models

import "time"

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleEntries returns the ten-event sample used by the dashboard demos and
// the development seed. A fresh slice is returned on every call.
func SampleEntries() []Entry {
	return []Entry{
		{
			ID: "event-001", Timestamp: at("2024-01-15T14:30:00Z"), Type: EventAPIKeyCreated,
			Description: "Created API key 'CI Pipeline'", User: "alice@example.com", Workspace: "production",
			Severity: SeverityInfo, Status: StatusSuccess, IPAddress: "192.168.1.10",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Resource: "api-key/ci-pipeline", Metadata: map[string]any{"keyPrefix": "sk_live", "permissions": []any{"state:read", "state:write"}},
		},
		{
			ID: "event-002", Timestamp: at("2024-01-15T13:15:00Z"), Type: EventLogin,
			Description: "Signed in with SSO", User: "bob@example.com", Workspace: "production",
			Severity: SeverityInfo, Status: StatusSuccess, IPAddress: "10.0.0.24",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
		},
		{
			ID: "event-003", Timestamp: at("2024-01-15T11:02:00Z"), Type: EventStateUpdated,
			Description: "Updated state 'networking' to v42", User: "alice@example.com", Workspace: "staging",
			Severity: SeverityInfo, Status: StatusSuccess, Resource: "state/networking",
			Metadata: map[string]any{"version": "42", "changes": float64(3)},
		},
		{
			ID: "event-004", Timestamp: at("2024-01-15T09:45:00Z"), Type: EventLoginFailed,
			Description: "Failed sign-in: invalid password", User: "mallory@example.com", Workspace: "production",
			Severity: SeverityWarning, Status: StatusFailure, IPAddress: "203.0.113.7",
			UserAgent: "curl/8.4.0",
		},
		{
			ID: "event-005", Timestamp: at("2024-01-14T18:20:00Z"), Type: EventStateLocked,
			Description: "Locked state 'database' for apply", User: "carol@example.com", Workspace: "staging",
			Severity: SeverityInfo, Status: StatusSuccess, Resource: "state/database",
			Metadata: map[string]any{"lockId": "lock-7f3a"},
		},
		{
			ID: "event-006", Timestamp: at("2024-01-14T16:05:00Z"), Type: EventTokenIssued,
			Description: "Issued access token for CLI", User: "bob@example.com", Workspace: "development",
			Severity: SeverityInfo, Status: StatusSuccess, IPAddress: "10.0.0.24",
		},
		{
			ID: "event-007", Timestamp: at("2024-01-14T12:40:00Z"), Type: EventPermissionChanged,
			Description: "Granted \"admin\" role to dave@example.com", User: "alice@example.com", Workspace: "production",
			Severity: SeverityWarning, Status: StatusSuccess, Resource: "workspace/production",
			Metadata: map[string]any{"role": "admin", "target": "dave@example.com"},
		},
		{
			ID: "event-008", Timestamp: at("2024-01-14T08:10:00Z"), Type: EventStateDeleted,
			Description: "Deleted state 'legacy-vpc'", User: "carol@example.com", Workspace: "development",
			Severity: SeverityCritical, Status: StatusSuccess, Resource: "state/legacy-vpc",
		},
		{
			ID: "event-009", Timestamp: at("2024-01-13T22:55:00Z"), Type: EventAPIKeyRevoked,
			Description: "Revoked API key 'Old Deploy Bot'", User: "alice@example.com", Workspace: "staging",
			Severity: SeverityWarning, Status: StatusSuccess, Resource: "api-key/old-deploy-bot",
		},
		{
			ID: "event-010", Timestamp: at("2024-01-13T07:30:00Z"), Type: EventLogout,
			Description: "Signed out", User: "bob@example.com", Workspace: "development",
			Severity: SeverityInfo, Status: StatusPending, IPAddress: "10.0.0.24",
		},
	}
}
