package export

import (
	"fmt"
	"strings"
)

// MarkdownExporter renders the collection as a readable markdown digest.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(data ExportData) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Memories\n\n")
	if !data.ExportedAt.IsZero() {
		fmt.Fprintf(&b, "Exported %s", data.ExportedAt.Format("2006-01-02 15:04"))
		if data.Model != "" {
			fmt.Fprintf(&b, " (indexed with %s)", data.Model)
		}
		b.WriteString("\n\n")
	}

	active := 0
	for _, item := range data.Items {
		if !item.Archived {
			if active == 0 {
				b.WriteString("## Active\n\n")
			}
			fmt.Fprintf(&b, "- %s\n", item.Content)
			active++
		}
	}
	if active > 0 {
		b.WriteString("\n")
	}

	archived := 0
	for _, item := range data.Items {
		if item.Archived {
			if archived == 0 {
				b.WriteString("## Archived\n\n")
			}
			fmt.Fprintf(&b, "- %s\n", item.Content)
			archived++
		}
	}
	if archived > 0 {
		b.WriteString("\n")
	}

	if active+archived == 0 {
		b.WriteString("No memories stored.\n")
	}
	return b.String(), nil
}
