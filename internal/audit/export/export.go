// Package export renders audit entries as downloadable CSV or JSON files.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"statedeck/internal/audit/models"
	dErrors "statedeck/pkg/domain-errors"
)

// Format selects the file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported export format %q", s))
	}
}

// Options controls an export. IP address, user agent and metadata are only
// written when IncludeDetails is set.
type Options struct {
	Format         Format
	IncludeDetails bool
	// Now stamps the envelope and names the file. Zero means time.Now().
	Now time.Time
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

var (
	baseColumns   = []string{"ID", "Timestamp", "Type", "User", "Workspace", "Description", "Severity", "Status"}
	detailColumns = []string{"IP Address", "User Agent", "Resource", "Metadata"}
)

// Render encodes entries in the requested format. Entry order is preserved.
func Render(entries []models.Entry, opts Options) (*File, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var (
		body        []byte
		contentType string
		err         error
	)
	switch opts.Format {
	case FormatCSV:
		body, err = renderCSV(entries, opts.IncludeDetails)
		contentType = "text/csv; charset=utf-8"
	case FormatJSON:
		body, err = renderJSON(entries, opts)
		contentType = "application/json"
	default:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported export format %q", opts.Format))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render export")
	}

	return &File{
		Name:        FileName(opts.Format, opts.Now),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// FileName returns audit-log-YYYY-MM-DD.<ext> for the date of now.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("audit-log-%s.%s", now.Format("2006-01-02"), f)
}

func renderCSV(entries []models.Entry, details bool) ([]byte, error) {
	var buf bytes.Buffer
	header := baseColumns
	if details {
		header = append(append([]string(nil), baseColumns...), detailColumns...)
	}
	writeCSVRow(&buf, header)

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			string(e.Type),
			e.User,
			e.Workspace,
			e.Description,
			string(e.Severity),
			string(e.Status),
		}
		if details {
			metadata := ""
			if len(e.Metadata) > 0 {
				raw, err := json.Marshal(e.Metadata)
				if err != nil {
					return nil, fmt.Errorf("marshal metadata for entry %s: %w", e.ID, err)
				}
				metadata = string(raw)
			}
			row = append(row, e.IPAddress, e.UserAgent, e.Resource, metadata)
		}
		writeCSVRow(&buf, row)
	}
	return buf.Bytes(), nil
}

// writeCSVRow quotes every field and doubles embedded quotes.
func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

type envelope struct {
	ExportedAt   time.Time      `json:"exportedAt"`
	TotalEntries int            `json:"totalEntries"`
	Entries      []models.Entry `json:"entries"`
}

func renderJSON(entries []models.Entry, opts Options) ([]byte, error) {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		if !opts.IncludeDetails {
			e.IPAddress = ""
			e.UserAgent = ""
			e.Metadata = nil
		}
		out[i] = e
	}
	return json.MarshalIndent(envelope{
		ExportedAt:   opts.Now.UTC(),
		TotalEntries: len(out),
		Entries:      out,
	}, "", "  ")
}
