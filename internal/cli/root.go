// Package cli implements fastlogctl, the operator tool that works directly on a FastLog
// data directory: seeding fixtures, printing stats, watching a live fast and exporting charts.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastlogapp/fastlog-server/internal/config"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/store"
	"github.com/fastlogapp/fastlog-server/internal/store/sqlite"
)

// options are the persistent flags shared by every command.
type options struct {
	metadataPath string
	envFile      string
	timezone     string
	logLevel     string
}

// app is an opened data directory.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *sqlite.Store
}

func (a *app) Close() error {
	return a.store.Close()
}

// NewRootCmd builds the fastlogctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "fastlogctl",
		Short:         "Operate on a FastLog data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.metadataPath, "metadata-path", "", "Directory holding fastlog.db (default: METADATA_PATH)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", "", "IANA timezone for day boundaries")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newChartCmd(opts))
	return root
}

// openApp loads configuration the same way the server does and opens the store.
func openApp(opts *options) (*app, error) {
	args := []string{"--env-file", opts.envFile, "--log-level", opts.logLevel}
	if opts.metadataPath != "" {
		args = append(args, "--metadata-path", opts.metadataPath)
	}
	if opts.timezone != "" {
		args = append(args, "--timezone", opts.timezone)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Metadata.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create metadata directory: %w", err)
	}

	st, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: st}, nil
}

// withApp opens the data directory for the duration of fn.
func withApp(opts *options, fn func(a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// lookupUser finds a user by email.
func lookupUser(ctx context.Context, users store.UserStore, email string) (*domain.User, error) {
	if email == "" {
		return nil, errors.New("--user is required")
	}
	user, err := users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
