// Package cli defines the Cobra command tree for the engram CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var verbose bool

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Long-term memory for conversational AI assistants",
	Long: `Engram stores durable facts about you and retrieves the relevant ones
by meaning. Memories live in a human-readable journal; a local vector
index makes them searchable with whichever embedding provider you
configure (OpenAI-compatible, Ollama, or Gemini).

Run 'engram init' to create the config, then 'engram add' to start
remembering.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newListCmd(),
		newUpdateCmd(),
		newArchiveCmd(),
		newUnarchiveCmd(),
		newRmCmd(),
		newQueryCmd(),
		newContextCmd(),
		newReembedCmd(),
		newExportCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("engram %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
