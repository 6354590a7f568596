package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/export"
)

func newExportCmd() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories as markdown or JSON",
		Long: `Render the whole collection (including archived memories) into a
shareable file or stdout.

Examples:
  engram export --format markdown > MEMORIES.md
  engram export --format json -o memories.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, ok := export.Get(format)
			if !ok {
				return fmt.Errorf("unknown format %q (valid: %s)",
					format, strings.Join(export.ValidFormats(), ", "))
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			data := export.ExportData{
				Items:      a.manager.Items(),
				ExportedAt: time.Now(),
			}
			if meta, ok, err := a.manager.Index().Meta(); err == nil && ok {
				data.Model = meta.Model
			}

			out, err := exporter.Export(data)
			if err != nil {
				return fmt.Errorf("render export: %w", err)
			}

			if outPath == "" {
				fmt.Print(out)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
