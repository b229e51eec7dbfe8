// Package filter narrows audit entries by the dashboard's filter bar.
//
// Criteria is the raw, optional filter state. Compile validates it once at the
// boundary and returns a Filter whose predicates are pure. Every populated
// criterion narrows the result; empty criteria match everything.
//
// Date bounds follow a single policy: a date-only value ("2024-01-15") covers
// the whole calendar day in the filter's location, so DateFrom starts at
// 00:00:00 and DateTo ends at 23:59:59.999999999. A full RFC 3339 timestamp is
// used as given. Both ends are inclusive.
package filter

import (
	"fmt"
	"strings"
	"time"

	"statedeck/internal/audit/models"
	dErrors "statedeck/pkg/domain-errors"
	pstrings "statedeck/pkg/platform/strings"
)

const dateOnlyLayout = "2006-01-02"

// Criteria is the filter state as it arrives from a query string or CLI flags.
type Criteria struct {
	User        string             `json:"user,omitempty"`
	Workspace   string             `json:"workspace,omitempty"`
	EventTypes  []models.EventType `json:"eventTypes,omitempty"`
	SearchQuery string             `json:"searchQuery,omitempty"`
	DateFrom    string             `json:"dateFrom,omitempty"`
	DateTo      string             `json:"dateTo,omitempty"`
}

// IsEmpty reports whether no criterion is populated.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.User) == "" &&
		strings.TrimSpace(c.Workspace) == "" &&
		len(c.EventTypes) == 0 &&
		strings.TrimSpace(c.SearchQuery) == "" &&
		strings.TrimSpace(c.DateFrom) == "" &&
		strings.TrimSpace(c.DateTo) == ""
}

// Filter is a validated, ready-to-apply set of predicates.
type Filter struct {
	user      string
	workspace string
	types     map[models.EventType]struct{}
	query     string
	from      *time.Time
	to        *time.Time
}

// Compile validates criteria and resolves date bounds in loc (nil means UTC).
func Compile(c Criteria, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := Filter{
		user:      strings.ToLower(strings.TrimSpace(c.User)),
		workspace: strings.ToLower(strings.TrimSpace(c.Workspace)),
		query:     strings.ToLower(strings.TrimSpace(c.SearchQuery)),
	}

	if len(c.EventTypes) > 0 {
		raw := make([]string, len(c.EventTypes))
		for i, t := range c.EventTypes {
			raw[i] = string(t)
		}
		f.types = make(map[models.EventType]struct{})
		for _, t := range pstrings.DedupeAndTrim(raw) {
			f.types[models.EventType(t)] = struct{}{}
		}
		if len(f.types) == 0 {
			f.types = nil
		}
	}

	from, err := parseBound("dateFrom", c.DateFrom, loc, false)
	if err != nil {
		return Filter{}, err
	}
	to, err := parseBound("dateTo", c.DateTo, loc, true)
	if err != nil {
		return Filter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return Filter{}, dErrors.New(dErrors.CodeValidation, "dateFrom must not be after dateTo")
	}
	f.from, f.to = from, to

	return f, nil
}

// parseBound accepts a date-only value or an RFC 3339 timestamp. Date-only
// upper bounds are pushed to the last nanosecond of that day.
func parseBound(field, raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if d, err := time.ParseInLocation(dateOnlyLayout, raw, loc); err == nil {
		if endOfDay {
			d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &d, nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s: invalid date %q (want YYYY-MM-DD or RFC 3339)", field, raw))
	}
	return &t, nil
}

// Matches reports whether e satisfies every populated criterion.
func (f Filter) Matches(e models.Entry) bool {
	if f.user != "" && !containsFold(e.User, f.user) {
		return false
	}
	if f.workspace != "" && !containsFold(e.Workspace, f.workspace) {
		return false
	}
	if f.types != nil {
		if _, ok := f.types[e.Type]; !ok {
			return false
		}
	}
	if f.query != "" && !f.matchesQuery(e) {
		return false
	}
	if f.from != nil && e.Timestamp.Before(*f.from) {
		return false
	}
	if f.to != nil && e.Timestamp.After(*f.to) {
		return false
	}
	return true
}

func (f Filter) matchesQuery(e models.Entry) bool {
	for _, field := range []string{e.Description, e.User, e.Workspace, string(e.Type), e.Resource, e.ID} {
		if containsFold(field, f.query) {
			return true
		}
	}
	return false
}

// Apply returns the matching entries in their original order. The input slice
// is never modified.
func (f Filter) Apply(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Apply compiles c and applies it in one step.
func Apply(entries []models.Entry, c Criteria, loc *time.Location) ([]models.Entry, error) {
	f, err := Compile(c, loc)
	if err != nil {
		return nil, err
	}
	return f.Apply(entries), nil
}

// needle is already lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
