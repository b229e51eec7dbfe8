// Package cli implements statectl, which runs the dashboard data logic over
// JSON files.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"statedeck/internal/pagination"
	dErrors "statedeck/pkg/domain-errors"
)

const (
	keyTimezone = "timezone"
	keyPageSize = "page-size"
	keyOutput   = "output"
)

// options holds settings shared by every subcommand. Values come from flags,
// STATEDECK_* environment variables, or the optional config file, in that
// order of precedence.
type options struct {
	v *viper.Viper
}

func (o *options) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.v.GetString(keyTimezone))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("unknown timezone %q", o.v.GetString(keyTimezone)))
	}
	return loc, nil
}

func (o *options) pageSize() int { return o.v.GetInt(keyPageSize) }

func (o *options) output() string { return strings.ToLower(o.v.GetString(keyOutput)) }

// NewRootCommand builds the statectl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:           "statectl",
		Short:         "Inspect audit logs, state versions and credentials from JSON files",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd, cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	pf.String("tz", "UTC", "timezone used for date filters and grouping")
	pf.Int(keyPageSize, pagination.DefaultPageSize, "entries revealed per page")
	pf.StringP(keyOutput, "o", "text", "output format: text, json or yaml")

	root.AddCommand(
		newAuditCommand(opts),
		newVersionsCommand(opts),
		newUsageCommand(opts),
		newCredentialsCommand(opts),
	)
	return root
}

func (o *options) load(cmd *cobra.Command, cfgFile string) error {
	o.v.SetEnvPrefix("STATEDECK")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()
	// share the server's timezone variable
	if err := o.v.BindEnv(keyTimezone, "STATEDECK_TIMELINE_TZ"); err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if err := o.v.BindPFlag(keyTimezone, flags.Lookup("tz")); err != nil {
		return err
	}
	if err := o.v.BindPFlag(keyPageSize, flags.Lookup(keyPageSize)); err != nil {
		return err
	}
	if err := o.v.BindPFlag(keyOutput, flags.Lookup(keyOutput)); err != nil {
		return err
	}

	if cfgFile != "" {
		o.v.SetConfigFile(cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	switch o.output() {
	case "text", "json", "yaml":
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported output %q", o.output()))
	}
	if o.pageSize() <= 0 {
		return dErrors.New(dErrors.CodeValidation, "page size must be positive")
	}
	return nil
}

// readJSON decodes path into T. "-" reads standard input.
func readJSON[T any](cmd *cobra.Command, path string) (T, error) {
	var v T
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return v, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("%s: invalid JSON", path))
	}
	return v, nil
}

// render writes v as json or yaml, or calls text for the text output.
func (o *options) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch o.output() {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// round-trip through JSON so yaml keys match the API's camelCase names
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return text(w)
	}
}
