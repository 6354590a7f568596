package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/engram-ai/engram/internal/config"
	"github.com/engram-ai/engram/internal/db"
	"github.com/engram-ai/engram/internal/embed"
	"github.com/engram-ai/engram/internal/memory"
)

// app bundles the wired-up collaborators most commands need.
type app struct {
	cfg      config.Config
	database *db.DB
	embedder *embed.Client
	manager  *memory.Manager
	log      zerolog.Logger
}

// openApp loads the config and opens the journal and vector database.
// It fails when the data directory does not exist yet, pointing the
// user at `engram init`.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("engram is not initialized. Run `engram init` first")
	}

	logger := newLogger()

	database, err := db.Open(config.DBPath(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	embedder := embed.NewClient(cfg)
	manager, err := memory.NewManager(
		memory.NewJournal(config.JournalPath(cfg.DataDir)),
		memory.NewVectorIndex(database),
		embedder,
		memory.ManagerConfig{
			ChunkSize:      cfg.ChunkSize,
			PreferredModel: cfg.ActiveModel,
			Logger:         logger,
		},
	)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		database: database,
		embedder: embedder,
		manager:  manager,
		log:      logger,
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}

// newLogger builds a console logger on stderr. Warnings and errors only
// unless --verbose is set.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// shortID abbreviates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID expands an abbreviated id to a full one, failing when the
// prefix is unknown or ambiguous.
func resolveID(m *memory.Manager, prefix string) (string, error) {
	if _, ok := m.Get(prefix); ok {
		return prefix, nil
	}

	var found []string
	for _, item := range m.Items() {
		if strings.HasPrefix(item.ID, prefix) {
			found = append(found, item.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no memory with id %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", prefix, len(found))
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
