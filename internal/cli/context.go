package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/prompt"
)

func newContextCmd() *cobra.Command {
	var maxTokens int
	var showSources bool

	cmd := &cobra.Command{
		Use:   "context <question>",
		Short: "Build a prompt context block from relevant memories",
		Long: `Assemble the memories relevant to a question into a markdown block
that fits a token budget, ready to paste into a chat prompt or pipe
into another tool.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tokenizer, err := prompt.NewTokenizer()
			if err != nil {
				return err
			}
			builder := prompt.NewBuilder(a.manager, tokenizer)

			if maxTokens < 1 {
				maxTokens = a.cfg.Context.MaxTokens
			}

			built, err := builder.Build(cmd.Context(), prompt.BuildOptions{
				Query:     question,
				MaxTokens: maxTokens,
				TopK:      a.cfg.TopK,
				MinScore:  a.cfg.Context.MinScore,
			})
			if err != nil {
				return err
			}

			if built.Text == "" {
				fmt.Println("No relevant memories.")
				return nil
			}

			fmt.Print(built.Text)
			if showSources {
				fmt.Printf("\n(%d tokens, %d memories)\n", built.TokensUsed, built.MemoriesUsed)
				for _, s := range built.Sources {
					fmt.Printf("  %s\n", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token budget (default from config)")
	cmd.Flags().BoolVar(&showSources, "sources", false, "list which memories were included")

	return cmd
}
