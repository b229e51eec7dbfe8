package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	dErrors "statedeck/pkg/domain-errors"
)

// StateVersion is one stored revision of a state document. Checksum is shown
// as-is; it is never recomputed here.
type StateVersion struct {
	ID          string          `json:"id"`
	Version     string          `json:"version"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Author      string          `json:"author"`
	Content     json.RawMessage `json:"content"`
	Checksum    string          `json:"checksum"`
	Size        int64           `json:"size"`
	Tags        []string        `json:"tags,omitempty"`
}

// Validate checks identity fields.
func (v StateVersion) Validate() error {
	if v.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "version id is required")
	}
	if v.Version == "" {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("version %s: version label is required", v.ID))
	}
	if v.CreatedAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("version %s: createdAt is required", v.ID))
	}
	return nil
}

// SortByCreatedDesc returns a newest-first copy of versions.
func SortByCreatedDesc(versions []StateVersion) []StateVersion {
	out := append([]StateVersion(nil), versions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ChangeType tags a diff chunk.
type ChangeType string

const (
	ChangeAddition     ChangeType = "addition"
	ChangeDeletion     ChangeType = "deletion"
	ChangeModification ChangeType = "modification"
)

// DiffChunk is one atomic change located by a path expression.
type DiffChunk struct {
	Path       string     `json:"path"`
	OldValue   any        `json:"oldValue,omitempty"`
	NewValue   any        `json:"newValue,omitempty"`
	LineNumber *int       `json:"lineNumber,omitempty"`
	Type       ChangeType `json:"type"`
}

// Line returns the line number, treating a missing one as zero.
func (c DiffChunk) Line() int {
	if c.LineNumber == nil {
		return 0
	}
	return *c.LineNumber
}

// Validate enforces which values each change type carries: additions only the
// new value, deletions only the old, modifications both.
func (c DiffChunk) Validate() error {
	switch c.Type {
	case ChangeAddition:
		if c.OldValue != nil || c.NewValue == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s: addition must carry only newValue", c.Path))
		}
	case ChangeDeletion:
		if c.NewValue != nil || c.OldValue == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s: deletion must carry only oldValue", c.Path))
		}
	case ChangeModification:
		if c.OldValue == nil || c.NewValue == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s: modification must carry oldValue and newValue", c.Path))
		}
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s: unknown change type %q", c.Path, c.Type))
	}
	return nil
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleVersions returns the demo version history, oldest first.
func SampleVersions() []StateVersion {
	return []StateVersion{
		{
			ID: "ver-001", Version: "1.0.0", Description: "Initial networking state",
			CreatedAt: at("2024-01-10T09:00:00Z"), Author: "alice@example.com",
			Content:  json.RawMessage(`{"region":"us-east-1","vpc":{"cidr":"10.0.0.0/16","subnets":["10.0.1.0/24"]},"outputs":{"endpoint":"vpc-1.internal"}}`),
			Checksum: "sha256:4f2a9c", Size: 1843, Tags: []string{"baseline"},
		},
		{
			ID: "ver-002", Version: "1.1.0", Description: "Add private subnet and NAT",
			CreatedAt: at("2024-01-12T15:30:00Z"), Author: "bob@example.com",
			Content:  json.RawMessage(`{"region":"us-east-1","vpc":{"cidr":"10.0.0.0/16","subnets":["10.0.1.0/24","10.0.2.0/24"],"nat":true},"outputs":{"endpoint":"vpc-1.internal"}}`),
			Checksum: "sha256:91be07", Size: 2210, Tags: []string{"network"},
		},
		{
			ID: "ver-003", Version: "2.0.0", Description: "Move to us-west-2",
			CreatedAt: at("2024-01-15T11:02:00Z"), Author: "alice@example.com",
			Content:  json.RawMessage(`{"region":"us-west-2","vpc":{"cidr":"10.1.0.0/16","subnets":["10.1.1.0/24","10.1.2.0/24"],"nat":true}}`),
			Checksum: "sha256:c03d5e", Size: 2051, Tags: []string{"network", "migration"},
		},
	}
}
