package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"statedeck/internal/audit/export"
	"statedeck/internal/audit/filter"
	"statedeck/internal/audit/models"
	"statedeck/internal/audit/service"
	"statedeck/internal/audit/store/memory"
	"statedeck/internal/format"
	pstrings "statedeck/pkg/platform/strings"
)

type criteriaFlags struct {
	user      string
	workspace string
	types     []string
	query     string
	from      string
	to        string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.user, "user", "", "match entries whose user contains this text")
	fl.StringVar(&f.workspace, "workspace", "", "match entries whose workspace contains this text")
	fl.StringSliceVar(&f.types, "type", nil, "event types to keep (repeatable, comma separated)")
	fl.StringVarP(&f.query, "query", "q", "", "free-text search")
	fl.StringVar(&f.from, "from", "", "earliest date (YYYY-MM-DD or RFC 3339), inclusive")
	fl.StringVar(&f.to, "to", "", "latest date (YYYY-MM-DD or RFC 3339), inclusive")
}

func (f *criteriaFlags) criteria() filter.Criteria {
	c := filter.Criteria{
		User:        f.user,
		Workspace:   f.workspace,
		SearchQuery: f.query,
		DateFrom:    f.from,
		DateTo:      f.to,
	}
	for _, t := range pstrings.SplitList(f.types) {
		c.EventTypes = append(c.EventTypes, models.EventType(t))
	}
	return c
}

func newAuditCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Filter and export audit logs",
	}
	cmd.AddCommand(newAuditFilterCommand(opts), newAuditExportCommand(opts))
	return cmd
}

// auditService loads entries from path into a fresh in-memory service.
func auditService(cmd *cobra.Command, opts *options, path string) (*service.Service, error) {
	entries, err := readJSON[[]models.Entry](cmd, path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	if err := models.EnsureUniqueIDs(entries); err != nil {
		return nil, err
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}

	store := memory.NewInMemoryStore()
	store.Seed(cmd.Context(), entries)
	return service.New(store,
		service.WithLocation(loc),
		service.WithPageSize(opts.pageSize()),
	)
}

func newAuditFilterCommand(opts *options) *cobra.Command {
	var (
		file    string
		flat    bool
		visible int
		cf      criteriaFlags
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show the filtered audit timeline grouped by day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := auditService(cmd, opts, file)
			if err != nil {
				return err
			}
			res, err := svc.Search(cmd.Context(), service.Query{
				Criteria:    cf.criteria(),
				GroupByDate: !flat,
				Visible:     visible,
			})
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				return writeTimeline(w, res, svc.Location())
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of audit entries (- for stdin)")
	cmd.Flags().BoolVar(&flat, "flat", false, "do not group entries by day")
	cmd.Flags().IntVar(&visible, "visible", 0, "entries already shown; rounds up to whole pages")
	cf.register(cmd)
	return cmd
}

func writeTimeline(w io.Writer, res *service.Result, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range res.Groups {
		if g.Label != "" {
			fmt.Fprintf(tw, "%s\n", g.Label)
		}
		for _, e := range g.Entries {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				format.Time(e.Timestamp, loc), e.ID, e.Type.Label(), e.User, e.Description)
		}
	}
	fmt.Fprintf(tw, "showing %s of %s entries", format.Number(int64(res.Visible)), format.Number(int64(res.Total)))
	if res.HasMore {
		fmt.Fprint(tw, " (more available)")
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func newAuditExportCommand(opts *options) *cobra.Command {
	var (
		file    string
		out     string
		f       string
		details bool
		cf      criteriaFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filtered audit entries as CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportFormat, err := export.ParseFormat(f)
			if err != nil {
				return err
			}
			svc, err := auditService(cmd, opts, file)
			if err != nil {
				return err
			}
			rendered, err := svc.Export(cmd.Context(), cf.criteria(), export.Options{
				Format:         exportFormat,
				IncludeDetails: details,
				Now:            time.Now(),
			})
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(rendered.Body)
				return err
			}
			path := out
			if path == "" {
				path = rendered.Name
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, rendered.Name)
			}
			if err := os.WriteFile(path, rendered.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", path, format.Size(int64(len(rendered.Body))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of audit entries (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "", "output file or directory; - for stdout (default: generated name)")
	cmd.Flags().StringVar(&f, "format", "csv", "csv or json")
	cmd.Flags().BoolVar(&details, "details", false, "include IP address, user agent and metadata")
	cf.register(cmd)
	return cmd
}
