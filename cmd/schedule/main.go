// Package main is the entry point of the schedule hub CLI.
//
// The tool downloads the lesson schedule from the SamGTU personal cabinet,
// normalizes and classifies it, stores it in SQLite or PostgreSQL and answers
// three questions: what is on a given day, when is a subject, and what does
// an instructor teach.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lk-schedule/schedule-hub/config"
	"github.com/lk-schedule/schedule-hub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "schedule",
		Short: "Personal class schedule from the SamGTU cabinet",
		Long: `schedule fetches lessons from lk.samgtu.ru, stores them locally and
answers queries by day, by subject and by instructor.

Settings come from config.yaml (or --config) and environment variables;
LK_PASSWORD and DATABASE_URL are read from the environment only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (default: ./config.yaml if present)")

	root.AddCommand(
		newSyncCmd(opts),
		newImportCmd(opts),
		newDayCmd(opts),
		newSubjectCmd(opts),
		newTeacherCmd(opts),
		newStatsCmd(opts),
		newShellCmd(opts),
		newRunCmd(opts),
		newWatchCmd(opts),
	)

	return root
}

// withApp builds the application for one command run and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, opts.configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

// setupLogger writes JSON logs in production and text otherwise.
// Logs go to stderr so query output on stdout stays clean; outside production
// only warnings are shown unless APP_DEBUG is set.
func setupLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	opts := logger.Options{
		Output: out,
		Level:  slog.LevelWarn,
		Format: logger.FormatText,
		App:    cfg.App.Name,
	}
	if cfg.IsProduction() {
		opts.Level = slog.LevelInfo
		opts.Format = logger.FormatJSON
	}
	if cfg.App.LogLevel != "" {
		opts.Level = logger.ParseLevel(cfg.App.LogLevel)
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	log := logger.New(opts)
	slog.SetDefault(log)

	return log
}
