package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/config"
	"github.com/engram-ai/engram/internal/db"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and data directory",
		Long: `Set up engram for this user: write a default config to
~/.config/engram/config.toml (if none exists), create the data
directory, and prepare the vector database.

Edit the config afterwards to point at your embedding provider.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return fmt.Errorf("locate config: %w", err)
			}

			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.Save(config.Default()); err != nil {
					return err
				}
				fmt.Printf("Created %s\n", path)
			} else {
				fmt.Printf("Config already exists at %s\n", path)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}

			database, err := db.Open(config.DBPath(cfg.DataDir))
			if err != nil {
				return fmt.Errorf("prepare database: %w", err)
			}
			defer database.Close()

			fmt.Printf("Data directory: %s\n", cfg.DataDir)
			fmt.Println("\nNext steps:")
			fmt.Println("  engram add \"something worth remembering\"")
			fmt.Println("  engram query \"what do I like?\"")
			return nil
		},
	}
}
