package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/engram-ai/engram/internal/config"
	"github.com/engram-ai/engram/internal/memory"
)

func newWatchCmd() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the memory store and print changes as they happen",
		Long: `Start a long-running watcher that prints the collection whenever it
changes, whether through this process or another one editing the
journal (a second terminal, the MCP server, or a manual edit).

External journal edits are debounced so editors that write in several
steps produce a single refresh.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			journalPath := config.JournalPath(a.cfg.DataDir)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory, not the file: atomic saves replace
			// the file by rename, which drops a file-level watch.
			if err := watcher.Add(filepath.Dir(journalPath)); err != nil {
				return fmt.Errorf("watch data directory: %w", err)
			}

			updates, cancel := a.manager.Subscribe()
			defer cancel()

			debounce := time.Duration(debounceMs) * time.Millisecond
			fmt.Printf("Watching %s (debounce %s). Press Ctrl-C to stop.\n\n", journalPath, debounce)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			timer := time.NewTimer(debounce)
			timer.Stop() // Don't fire immediately.

			printItems := func(items []memory.Item) {
				ts := time.Now().Format("15:04:05")
				fmt.Printf("[%s] %d memories\n", ts, len(items))
				for _, item := range items {
					label := ""
					if item.Archived {
						label = " [archived]"
					}
					fmt.Printf("  %s  %s%s\n", shortID(item.ID), item.Content, label)
				}
				fmt.Println()
			}

			for {
				select {
				case <-sigCh:
					fmt.Println("\nStopping watcher.")
					return nil

				case items := <-updates:
					printItems(items)

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(journalPath) {
						continue
					}
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
						timer.Reset(debounce)
					}

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "  watch error: %v\n", err)

				case <-timer.C:
					// The journal changed on disk behind this process.
					items, err := memory.NewJournal(journalPath).LoadAll()
					if err != nil {
						fmt.Fprintf(os.Stderr, "  journal unreadable: %v\n", err)
						continue
					}
					printItems(items)
				}
			}
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "debounce interval in milliseconds")

	return cmd
}
