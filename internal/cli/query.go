package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/memory"
)

func newQueryCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search memories by meaning",
		Long: `Find the stored memories closest in meaning to the given text.

Results are ranked by cosine similarity, best first. Archived memories
never appear.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if topK < 1 {
				topK = a.cfg.TopK
			}

			matches, err := a.manager.QueryMemories(cmd.Context(), query, topK)
			var mismatch *memory.DimensionMismatchError
			if errors.As(err, &mismatch) {
				return fmt.Errorf(
					"the embedding model changed: the index holds %d-dim vectors but the query produced %d. Run `engram reembed` to rebuild the index",
					mismatch.Expected, mismatch.Actual)
			}
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				fmt.Println("No matching memories.")
				return nil
			}

			for _, m := range matches {
				fmt.Printf("%.2f  %s\n", m.Score, m.Item.Content)
				fmt.Printf("      id: %s\n", shortID(m.Item.ID))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "k", 0, "maximum number of results (default from config)")

	return cmd
}
