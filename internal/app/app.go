// Package app assembles a tracker service from configuration. Both the server
// and the CLI start here so they read the same log the same way.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/ironlog/internal/command"
	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/plan"
	"github.com/claude/ironlog/internal/prescription"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/tracker"
)

// App is an open event store plus the service running on it.
type App struct {
	Service *tracker.Service
	Store   storage.Store
}

// Open validates the template, runs migrations, opens the configured store
// and builds the service.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	templates := plan.FileProvider{Path: cfg.Plan.TemplatePath}
	tpl, err := templates.Template(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}

	strategy, err := prescription.ByName(cfg.Progression.Strategy, cfg.Progression.StaticMultiplier)
	if err != nil {
		return nil, err
	}

	if err := storage.RunMigrations(cfg.Database.Driver, cfg.Database.Source()); err != nil {
		return nil, fmt.Errorf("migrating %s store: %w", cfg.Database.Driver, err)
	}
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.Source())
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}

	handler := command.New(command.WithWeeks(cfg.Plan.Weeks))
	log.Info("training plan loaded",
		"template", tpl.Name,
		"workouts_per_week", len(tpl.Workouts),
		"weeks", handler.Weeks(),
		"strategy", cfg.Progression.Strategy,
	)

	return &App{
		Service: tracker.NewService(store, templates, handler, strategy, log),
		Store:   store,
	}, nil
}

// Close releases the event store.
func (a *App) Close() error {
	return a.Store.Close()
}
