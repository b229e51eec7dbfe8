package models

import (
	"time"
)

// Status is the credential state reported by the issuing system. It is only
// displayed, never changed or checked against the clock here.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusRevoked   Status = "revoked"
	StatusSuspended Status = "suspended"
)

// Kind discriminates the Token variants.
type Kind string

const (
	KindAPIKey Kind = "api_key"
	KindJWT    Kind = "jwt"
)

// Token is a credential shown in the management panel. The set of
// implementations is closed: APIKey and JWTToken.
type Token interface {
	Kind() Kind
	token()
}

// APIKey is a long-lived key. Only its prefix and last four characters are
// ever known.
type APIKey struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Prefix      string     `json:"prefix"`
	LastFour    string     `json:"lastFour"`
	Status      Status     `json:"status"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	UsageCount  int64      `json:"usageCount"`
	UsageLimit  int64      `json:"usageLimit"`
}

func (APIKey) Kind() Kind { return KindAPIKey }
func (APIKey) token()     {}

// JWTToken is an issued bearer token.
type JWTToken struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Issuer    string     `json:"issuer"`
	Audience  []string   `json:"audience,omitempty"`
	Scopes    []string   `json:"scopes"`
	Status    Status     `json:"status"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (JWTToken) Kind() Kind { return KindJWT }
func (JWTToken) token()     {}
