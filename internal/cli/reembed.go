package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newReembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reembed",
		Short: "Rebuild the vector index with the active embedding model",
		Long: `Discard every stored vector and re-derive all of them from the journal
with the currently configured embedding model.

This is the recovery path after switching to a model with a different
vector dimension, and it also picks up memories whose indexing was
deferred by an earlier provider outage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("  Reembedding"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)

			summary, err := a.manager.ReembedAll(cmd.Context())
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Printf("Reembedded %d of %d memories in %s\n",
				summary.Succeeded, summary.Total, summary.Elapsed.Round(time.Millisecond))
			if summary.Failed > 0 {
				fmt.Printf("Failed: %d\n", summary.Failed)
				for _, id := range summary.FailedIDs {
					fmt.Printf("  %s\n", shortID(id))
				}
				fmt.Println("Run `engram reembed` again once the provider is reachable.")
			}
			return nil
		},
	}
}
