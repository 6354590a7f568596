package cli

import (
	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/mcp"
	"github.com/engram-ai/engram/internal/prompt"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve memories to MCP clients over stdio",
		Long: `Run engram as an MCP server so chat clients can save, search and
inject memories through tool calls. Configure your client to launch
"engram mcp" as a stdio server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			// Context building is best-effort: without the tokenizer the
			// memory_context tool degrades to plain query results.
			var builder *prompt.Builder
			if tokenizer, err := prompt.NewTokenizer(); err == nil {
				builder = prompt.NewBuilder(a.manager, tokenizer)
			} else {
				a.log.Warn().Err(err).Msg("tokenizer unavailable, serving context without budgeting")
			}

			return mcp.NewServer(a.manager, builder, a.cfg.TopK).Serve(version)
		},
	}
}
