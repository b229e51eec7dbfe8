package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"statedeck/internal/credentials/inspect"
	"statedeck/internal/credentials/models"
)

func newCredentialsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Describe credentials",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Decode a JWT without verifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := inspect.JWT(args[0])
			if err != nil {
				return err
			}
			d, err := models.Describe(tok, time.Now())
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), d, func(w io.Writer) error {
				return writeDisplay(w, d)
			})
		},
	})
	return cmd
}

func writeDisplay(w io.Writer, d models.Display) error {
	fmt.Fprintf(w, "%s [%s]\n", d.Title, d.Status)
	fmt.Fprintf(w, "  id:      %s\n", d.Identifier)
	fmt.Fprintf(w, "  expiry:  %s\n", d.ExpiryLabel)
	_, err := fmt.Fprintf(w, "  scopes:  %s\n", strings.Join(d.Permissions, ", "))
	return err
}
