package models

import "time"

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

// SampleAPIKeys returns the demo keys: one per status that the panel colors
// differently, plus a key without a usage limit.
func SampleAPIKeys() []APIKey {
	return []APIKey{
		{
			ID: "key-001", Name: "CI Pipeline", Prefix: "sk_live", LastFour: "3f9a", Status: StatusActive,
			Permissions: []string{"state:read", "state:write"},
			CreatedAt:   at("2023-11-02T10:00:00Z"), LastUsedAt: ptr(at("2024-01-15T14:10:00Z")),
			ExpiresAt:  ptr(at("2024-04-14T00:00:00Z")),
			UsageCount: 7820, UsageLimit: 10000,
		},
		{
			ID: "key-002", Name: "Terraform Cloud", Prefix: "sk_live", LastFour: "b71c", Status: StatusActive,
			Permissions: []string{"state:read", "state:write", "state:lock"},
			CreatedAt:   at("2023-08-21T09:30:00Z"), LastUsedAt: ptr(at("2024-01-15T15:00:00Z")),
			UsageCount: 9640, UsageLimit: 10000,
		},
		{
			ID: "key-003", Name: "Old Deploy Bot", Prefix: "sk_live", LastFour: "0d42", Status: StatusRevoked,
			Permissions: []string{"state:read"},
			CreatedAt:   at("2023-02-14T12:00:00Z"), LastUsedAt: ptr(at("2024-01-10T08:00:00Z")),
			UsageCount: 312, UsageLimit: 1000,
		},
		{
			ID: "key-004", Name: "Staging Reader", Prefix: "sk_test", LastFour: "9e05", Status: StatusExpired,
			Permissions: []string{"state:read"},
			CreatedAt:   at("2023-06-01T00:00:00Z"), ExpiresAt: ptr(at("2024-01-05T00:00:00Z")),
			UsageCount: 45, UsageLimit: 0,
		},
	}
}

// SampleJWTTokens returns the demo bearer tokens.
func SampleJWTTokens() []JWTToken {
	return []JWTToken{
		{
			ID: "jti-5c1e9a7d-2f", Subject: "bob@example.com", Issuer: "https://auth.statedeck.dev",
			Audience: []string{"statedeck-api"}, Scopes: []string{"state:read", "workspace:list"},
			Status: StatusActive, IssuedAt: at("2024-01-14T16:05:00Z"), ExpiresAt: ptr(at("2024-01-21T16:05:00Z")),
		},
		{
			ID: "jti-88ab03f4-d1", Subject: "ci-runner", Issuer: "https://auth.statedeck.dev",
			Audience: []string{"statedeck-api"}, Scopes: []string{"state:write"},
			Status: StatusSuspended, IssuedAt: at("2024-01-02T09:00:00Z"),
		},
	}
}
