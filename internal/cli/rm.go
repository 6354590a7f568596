package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id> [id...]",
		Short: "Delete memories permanently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ids := make([]string, 0, len(args))
			for _, arg := range args {
				id, err := resolveID(a.manager, arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			if err := a.manager.DeleteMemories(ids); err != nil {
				return err
			}
			if len(ids) == 1 {
				fmt.Println("Deleted 1 memory")
			} else {
				fmt.Printf("Deleted %d memories\n", len(ids))
			}
			return nil
		},
	}
}
