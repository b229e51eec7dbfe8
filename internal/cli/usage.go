package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"statedeck/internal/format"
	"statedeck/internal/usage"
)

func newUsageCommand(opts *options) *cobra.Command {
	var (
		used, limit float64
		label       string
		override    string
	)
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Classify usage against a limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var variant *usage.Variant
			if override != "" {
				v := usage.Variant(override)
				variant = &v
			}
			meter := usage.NewMeterWith(label, used, limit, variant)
			return opts.render(cmd.OutOrStdout(), meter, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %s of %s (%s, %s)\n",
					meter.Label,
					format.Number(int64(meter.Usage)),
					format.Number(int64(meter.Limit)),
					format.Percent(meter.Reading.Percentage),
					meter.Reading.Variant,
				)
				return err
			})
		},
	}
	cmd.Flags().Float64Var(&used, "used", 0, "current usage")
	cmd.Flags().Float64Var(&limit, "limit", 0, "quota; 0 means no limit")
	cmd.Flags().StringVar(&label, "label", "Usage", "meter label")
	cmd.Flags().StringVar(&override, "variant", "", "force a variant (default, warning or danger)")
	return cmd
}
