package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/catalog"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/config"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
)

// app is everything a command needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	repo   *repository.Repository
	out    *OutputFormatter
}

// openApp loads configuration and opens the repository. With autoSeed the
// catalog is seeded when the config asks for it.
func openApp(cmd *cobra.Command, opts *RootOptions, autoSeed bool) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)
	logger.Debug("opening database", "path", cfg.Database)

	repo, err := repository.Open(cfg.Database, repository.Options{
		Logger:      logger,
		PickupDelay: cfg.PickupDelay,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}

	if autoSeed && cfg.Seed {
		if _, err := a.seed(ctxOf(cmd), cfg.Catalog); err != nil {
			repo.Close()
			return nil, err
		}
	}
	return a, nil
}

// seed inserts the catalog at path, or the built-in one, into an empty
// database.
func (a *app) seed(ctx context.Context, path string) (bool, error) {
	var cat *catalog.Catalog
	if path != "" {
		c, err := catalog.CompileFile(path)
		if err != nil {
			return false, WrapExitError(ExitCommandError, "failed to compile catalog", err)
		}
		cat = c
	}
	seeded, err := a.repo.SeedCatalog(ctx, cat)
	if err != nil {
		return false, WrapExitError(ExitFailure, "failed to seed catalog", err)
	}
	return seeded, nil
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *app) error) error {
	a, err := openApp(cmd, opts, true)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctxOf(cmd), a)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
