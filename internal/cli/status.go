package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/config"
	"github.com/engram-ai/engram/internal/prompt"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current memory store state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.manager.Items()
			archived := 0
			for _, item := range items {
				if item.Archived {
					archived++
				}
			}

			index := a.manager.Index()
			vectors, err := index.Count()
			if err != nil {
				return err
			}

			var dbSize int64
			if fi, err := os.Stat(config.DBPath(a.cfg.DataDir)); err == nil {
				dbSize = fi.Size()
			}

			fmt.Printf("\nMemories: %d total", len(items))
			if archived > 0 {
				fmt.Printf(" (%d archived)", archived)
			}
			fmt.Println()
			fmt.Printf("Vectors:  %d\n", vectors)

			meta, ok, err := index.Meta()
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Index:    %d dimensions", meta.Dimension)
				if meta.Model != "" {
					fmt.Printf(", model %s", meta.Model)
				}
				fmt.Println()
			} else {
				fmt.Println("Index:    empty (dimension not locked yet)")
			}

			if modelID, err := a.embedder.ActiveModelID(a.cfg.ActiveModel); err == nil {
				fmt.Printf("Model:    %s (active)\n", modelID)
				if ok && meta.Model != "" && meta.Model != modelID {
					fmt.Println("          note: differs from the model that built the index;")
					fmt.Println("          run `engram reembed` if queries start failing")
				}
			}

			// Token total is advisory; skip it if the tokenizer is unavailable.
			if tokenizer, err := prompt.NewTokenizer(); err == nil {
				total := 0
				for _, item := range items {
					total += tokenizer.Count(item.Content)
				}
				fmt.Printf("Tokens:   ~%d across all memories\n", total)
			}

			if a.manager.JournalCorrupt() {
				fmt.Println("Journal:  UNREADABLE (corrupt file left in place; the next")
				fmt.Println("          add/update/rm will overwrite it)")
			}

			fmt.Printf("Data:     %s (%s database)\n", a.cfg.DataDir, formatBytes(dbSize))
			fmt.Println()
			return nil
		},
	}
}
