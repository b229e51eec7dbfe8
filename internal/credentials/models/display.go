package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"statedeck/internal/format"
	dErrors "statedeck/pkg/domain-errors"
)

// BadgeVariant is the color of a status badge.
type BadgeVariant string

const (
	BadgeSuccess BadgeVariant = "success"
	BadgeWarning BadgeVariant = "warning"
	BadgeDanger  BadgeVariant = "danger"
	BadgeNeutral BadgeVariant = "neutral"
)

const maskRunes = "••••••••"

// Display is the rendered card for one credential.
type Display struct {
	Kind         Kind         `json:"kind"`
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Identifier   string       `json:"identifier"`
	Status       Status       `json:"status"`
	Badge        BadgeVariant `json:"badge"`
	ExpiryLabel  string       `json:"expiryLabel"`
	CreatedLabel string       `json:"createdLabel"`
	LastUsed     string       `json:"lastUsed,omitempty"`
	Permissions  []string     `json:"permissions"`
}

// BadgeFor maps a status to its badge color. Unknown statuses are neutral.
func BadgeFor(s Status) BadgeVariant {
	switch s {
	case StatusActive:
		return BadgeSuccess
	case StatusExpired, StatusSuspended:
		return BadgeWarning
	case StatusRevoked:
		return BadgeDanger
	default:
		return BadgeNeutral
	}
}

// ExpiryLabel describes expiresAt relative to now in whole days.
func ExpiryLabel(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return "Never expires"
	}
	d := expiresAt.Sub(now)
	if d < 0 {
		days := int(-d / (24 * time.Hour))
		if days == 0 {
			return "Expired today"
		}
		return "Expired " + dayCount(days) + " ago"
	}
	days := int(d / (24 * time.Hour))
	if days == 0 {
		return "Expires today"
	}
	return "Expires in " + dayCount(days)
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return strconv.Itoa(n) + " days"
}

// MaskKey renders "sk_live_••••••••3f9a".
func MaskKey(prefix, lastFour string) string {
	if prefix == "" {
		return maskRunes + lastFour
	}
	return strings.TrimSuffix(prefix, "_") + "_" + maskRunes + lastFour
}

// ShortID shortens a token id to its first eight characters.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

// Describe renders a credential card. now drives the expiry and last-used
// labels.
func Describe(t Token, now time.Time) (Display, error) {
	switch v := t.(type) {
	case *APIKey:
		if v != nil {
			return Describe(*v, now)
		}
	case *JWTToken:
		if v != nil {
			return Describe(*v, now)
		}
	case APIKey:
		d := Display{
			Kind:         KindAPIKey,
			ID:           v.ID,
			Title:        v.Name,
			Identifier:   MaskKey(v.Prefix, v.LastFour),
			Status:       v.Status,
			Badge:        BadgeFor(v.Status),
			ExpiryLabel:  ExpiryLabel(v.ExpiresAt, now),
			CreatedLabel: format.Date(v.CreatedAt, time.UTC),
			Permissions:  nonNil(v.Permissions),
		}
		if v.LastUsedAt != nil {
			d.LastUsed = format.Relative(*v.LastUsedAt, now)
		}
		return d, nil
	case JWTToken:
		return Display{
			Kind:         KindJWT,
			ID:           v.ID,
			Title:        v.Subject,
			Identifier:   ShortID(v.ID),
			Status:       v.Status,
			Badge:        BadgeFor(v.Status),
			ExpiryLabel:  ExpiryLabel(v.ExpiresAt, now),
			CreatedLabel: format.Date(v.IssuedAt, time.UTC),
			Permissions:  nonNil(v.Scopes),
		}, nil
	}
	return Display{}, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("cannot describe credential %T", t))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
