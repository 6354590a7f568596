package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var showArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.manager.Items()
			shown := 0
			for _, item := range items {
				if item.Archived && !showArchived {
					continue
				}
				label := ""
				if item.Archived {
					label = " [archived]"
				}
				fmt.Printf("%s%s\n", item.Content, label)
				fmt.Printf("  id: %s | created: %s\n\n",
					shortID(item.ID), item.CreatedAt.Local().Format("2006-01-02 15:04"))
				shown++
			}

			if shown == 0 {
				fmt.Println("No memories stored. Add one with `engram add`.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showArchived, "archived", "a", false, "include archived memories")

	return cmd
}
