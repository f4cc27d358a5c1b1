// Package cli implements ironlog-cli, a terminal front end that drives the
// tracker service directly against the configured event store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/app"
	"github.com/claude/ironlog/internal/config"
	"github.com/spf13/cobra"
)

// session carries the global flags to every subcommand.
type session struct {
	configPath string
	verbose    bool
}

func (s *session) config() (*config.Config, error) {
	return config.Load(s.configPath)
}

func (s *session) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// open loads config and opens the store. Callers must Close the app.
func (s *session) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	return app.Open(cmd.Context(), cfg, s.logger(cmd.ErrOrStderr()))
}

// NewRootCmd builds the ironlog-cli command tree.
func NewRootCmd() *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:   "ironlog-cli",
		Short: "Log sets and follow your training plan from the terminal",
		Long: `ironlog-cli records training events in the IronLog event store and shows
the workout in progress with its prescribed sets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "path to config file (defaults and IRONLOG_* env when empty)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newLogCmd(s),
		newCompleteCmd(s),
		newFinishWorkoutCmd(s),
		newTrainCmd(s),
		newHistoryCmd(s),
		newPositionCmd(s),
		newMigrateCmd(s),
		newExportCmd(s),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, renderError(err))
		return 1
	}
	return 0
}

// Main is the entry point used by cmd/ironlog-cli.
func Main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
