package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/memory"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <content>",
		Short: "Store a new memory",
		Long: `Save something engram should remember about you.

Examples:
  engram add "I prefer short answers without preamble"
  engram add "My staging cluster is eu-west-1, production is us-east-1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.manager.AddMemory(cmd.Context(), content)
			if errors.Is(err, memory.ErrIndexingDeferred) {
				fmt.Printf("Saved (id: %s)\n", shortID(item.ID))
				fmt.Println("Warning: the embedding provider was unreachable. The memory will")
				fmt.Println("become searchable after `engram reembed`.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Saved (id: %s)\n", shortID(item.ID))
			fmt.Printf("  %q\n", item.Content)
			return nil
		},
	}
}
