package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/importer"
	"github.com/claude/ironlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and IRONLOG_* env when empty)")
	eventsPath := flag.String("path", "", "path to events JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without writing to the store")
	appendMode := flag.Bool("append", false, "import even if the store already holds events")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *eventsPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -config config.yaml -path events.json [-dry-run] [-append]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := storage.RunMigrations(cfg.Database.Driver, cfg.Database.Source()); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no events will be written")
	}

	// Connect store
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.Source())
	if err != nil {
		log.Error("failed to open event store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("event store opened", "driver", cfg.Database.Driver)

	// Run import
	imp := importer.New(store, log, importer.Options{DryRun: *dryRun, Append: *appendMode})
	stats, err := imp.ImportFile(ctx, *eventsPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"events_read", stats.EventsRead,
		"events_appended", stats.EventsAppended,
		"existing", stats.Existing,
	)
	for typ, n := range stats.ByType {
		log.Info("events by type", "type", typ, "count", n)
	}
}
