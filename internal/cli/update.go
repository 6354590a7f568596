package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/memory"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <content>",
		Short: "Replace a memory's content",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args[1:], " ")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveID(a.manager, args[0])
			if err != nil {
				return err
			}

			item, err := a.manager.UpdateMemory(cmd.Context(), id, content)
			if errors.Is(err, memory.ErrIndexingDeferred) {
				fmt.Printf("Updated %s\n", shortID(item.ID))
				fmt.Println("Warning: reindexing failed; run `engram reembed` to refresh the index.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Updated %s\n", shortID(item.ID))
			fmt.Printf("  %q\n", item.Content)
			return nil
		},
	}
}
