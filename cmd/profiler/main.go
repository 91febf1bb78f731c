package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/db"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/repository"
	"github.com/emilianohg/profiler/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "profiler",
	Short: "Candidate interview tracker with AI-assisted profiling",
	Long: `Profiler keeps candidates, interviews and profiles in a local database and
applies AI suggestions delivered as auto-update links after you review them.`,
	Run: func(cmd *cobra.Command, args []string) {
		applyURL, _ := cmd.Flags().GetString("apply")

		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		if err := tui.Run(env.store, env.cfg, env.log, applyURL); err != nil {
			fail("Error", err)
		}
	},
}

// env holds what every command that touches the store needs.
type env struct {
	cfg   *config.Config
	log   logger.Logger
	db    *sql.DB
	store *repository.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.OpenAndMigrate()
	if err != nil {
		log.Error("failed to open database", err)
		return nil, err
	}

	store := repository.NewStore(database)
	seeded, err := store.Profiles.SeedDefaults(ctx)
	if err != nil {
		database.Close()
		return nil, err
	}
	if seeded > 0 {
		log.Info("seeded default profiles", zap.Int("count", seeded))
	}

	return &env{cfg: cfg, log: log, db: database, store: store}, nil
}

func mustOpenEnv(ctx context.Context) *env {
	e, err := openEnv(ctx)
	if err != nil {
		fail("Error opening profiler", err)
	}
	return e
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Error("failed to close database", err)
	}
	_ = e.log.Sync()
}

func openLogger(cfg *config.Config) (logger.Logger, error) {
	if err := config.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create profiler directory: %w", err)
	}
	logPath, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewFileLogger(logPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log, nil
}

// fail prints err for the user and exits.
func fail(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, describe(err))
	os.Exit(1)
}

func describe(err error) string {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr) && errors.Is(err, apperror.ErrInternal):
		return apperror.UserMessage(err)
	case errors.As(err, &appErr) && appErr.Details != "":
		return fmt.Sprintf("%s (%s)", appErr.Message, appErr.Details)
	case errors.As(err, &appErr):
		return appErr.Message
	}
	return err.Error()
}

func init() {
	rootCmd.Flags().String("apply", "", "Open the review screen for an auto-update link")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(candidateCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
