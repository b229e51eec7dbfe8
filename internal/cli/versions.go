package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"statedeck/internal/format"
	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
	"statedeck/internal/versions/service"
	"statedeck/internal/versions/store/memory"
)

func newVersionsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Compare state versions",
	}
	cmd.AddCommand(newVersionsDiffCommand(opts))
	return cmd
}

type diffOutput struct {
	From    string             `json:"from"`
	To      string             `json:"to"`
	Stats   diff.Stats         `json:"stats"`
	Unified []models.DiffChunk `json:"unified"`
}

func newVersionsDiffCommand(opts *options) *cobra.Command {
	var file, from, to string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show the unified diff between two versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions, err := readJSON[[]models.StateVersion](cmd, file)
			if err != nil {
				return err
			}
			store := memory.NewInMemoryStore()
			for _, v := range versions {
				if err := store.Save(cmd.Context(), v); err != nil {
					return err
				}
			}
			svc, err := service.New(store)
			if err != nil {
				return err
			}

			cmp, err := svc.Compare(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			out := diffOutput{From: cmp.From.ID, To: cmp.To.ID, Stats: cmp.Stats, Unified: cmp.Unified}
			return opts.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return writeDiff(w, cmp)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of state versions (- for stdin)")
	cmd.Flags().StringVar(&from, "from", "", "id of the older version")
	cmd.Flags().StringVar(&to, "to", "", "id of the newer version")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func writeDiff(w io.Writer, cmp *service.Comparison) error {
	fmt.Fprintf(w, "--- %s (%s, %s)\n", cmp.From.ID, cmp.From.Version, format.Size(cmp.From.Size))
	fmt.Fprintf(w, "+++ %s (%s, %s)\n", cmp.To.ID, cmp.To.Version, format.Size(cmp.To.Size))
	for _, c := range cmp.Unified {
		switch c.Type {
		case models.ChangeAddition:
			fmt.Fprintf(w, "%4d + %s: %s\n", c.Line(), c.Path, compact(c.NewValue))
		case models.ChangeDeletion:
			fmt.Fprintf(w, "%4d - %s: %s\n", c.Line(), c.Path, compact(c.OldValue))
		case models.ChangeModification:
			fmt.Fprintf(w, "%4d ~ %s: %s -> %s\n", c.Line(), c.Path, compact(c.OldValue), compact(c.NewValue))
		}
	}
	_, err := fmt.Fprintf(w, "%d additions, %d deletions, %d modifications\n",
		cmp.Stats.Additions, cmp.Stats.Deletions, cmp.Stats.Modifications)
	return err
}

func compact(v any) string {
	switch t := v.(type) {
	case json.RawMessage:
		return string(t)
	case nil:
		return "null"
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}
