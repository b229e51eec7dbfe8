// Package inspect decodes bearer tokens for display. Signatures are not
// verified: the result is informational only.
package inspect

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"statedeck/internal/credentials/models"
	dErrors "statedeck/pkg/domain-errors"
)

// claims accepts both the space-delimited "scope" claim and a "scopes" array.
type claims struct {
	Scope  string   `json:"scope,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// JWT decodes raw into a display record. The status is reported as active;
// expiry is left for the caller to label.
func JWT(raw string) (models.JWTToken, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return models.JWTToken{}, dErrors.New(dErrors.CodeValidation, "token is required")
	}

	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return models.JWTToken{}, dErrors.Wrap(err, dErrors.CodeValidation, "token is not a well-formed JWT")
	}

	t := models.JWTToken{
		ID:       c.ID,
		Subject:  c.Subject,
		Issuer:   c.Issuer,
		Audience: []string(c.Audience),
		Scopes:   scopes(c),
		Status:   models.StatusActive,
	}
	if c.IssuedAt != nil {
		t.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.UTC()
		t.ExpiresAt = &exp
	}
	return t, nil
}

func scopes(c claims) []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	if fields := strings.Fields(c.Scope); len(fields) > 0 {
		return fields
	}
	return []string{}
}
