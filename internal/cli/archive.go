package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Hide a memory from query results without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveID(a.manager, args[0])
			if err != nil {
				return err
			}

			item, err := a.manager.Archive(id)
			if err != nil {
				return err
			}
			fmt.Printf("Archived %s: %q\n", shortID(item.ID), item.Content)
			return nil
		},
	}
}

func newUnarchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Bring an archived memory back into query results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveID(a.manager, args[0])
			if err != nil {
				return err
			}

			item, err := a.manager.Unarchive(id)
			if err != nil {
				return err
			}
			fmt.Printf("Unarchived %s: %q\n", shortID(item.ID), item.Content)
			return nil
		},
	}
}
