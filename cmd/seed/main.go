// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed installs the default user groups of a context and seeds their
// localized names.
//
// Usage:
//
//	seed -context 1                         # install data/user_groups.xml into context 1
//	seed -context 1 -file groups.xml        # install a custom definition file
//	seed -locale fr_CA                      # seed fr_CA names for every context
//	seed -locale fr_CA -context 1           # seed fr_CA names for context 1 only
//
// It reads the same environment as cmd/api (DATABASE_URL, LOCALE_PATH, ...).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/i18n"
	"github.com/taibuivan/folio/internal/platform/migration"
	pgstore "github.com/taibuivan/folio/internal/platform/postgres"
	"github.com/taibuivan/folio/internal/usergroup"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pointer"
)

type options struct {
	contextID int64
	file      string
	locale    string
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("app", constants.AppName+"-seed"))

	opts := options{}
	flag.Int64Var(&opts.contextID, "context", 0, "context id to install into (0 with -locale means every context)")
	flag.StringVar(&opts.file, "file", "./data/user_groups.xml", "user group definition file")
	flag.StringVar(&opts.locale, "locale", "", "only seed localized names for this locale")
	flag.Parse()

	if err := run(log, opts); err != nil {
		log.Error("seed_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, opts options) error {
	if opts.locale == "" && opts.contextID <= 0 {
		return fmt.Errorf("seed: -context is required when installing definitions")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	context, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	pool, err := pgstore.NewPool(context, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	translator, err := i18n.Load(cfg.LocalePath)
	if err != nil {
		return err
	}

	service := usergroup.NewService(
		usergroup.NewPostgresRepository(pool),
		usergroup.NewPostgresAssignmentRepository(pool),
		translator, log,
		usergroup.WithStages(workflow.NewRegistry(cfg.ApplicationStages)),
		usergroup.WithDefaultLocale(cfg.DefaultLocale),
	)

	// ── Locale re-seed ──────────────────────────────────────────────────────
	if opts.locale != "" {
		if err := service.InstallLocale(context, opts.locale, pointer.NonZero(opts.contextID)); err != nil {
			return err
		}
		log.Info("locale_seeded", slog.String("locale", opts.locale), slog.Int64("context_id", opts.contextID))
		return nil
	}

	// ── Definition install ──────────────────────────────────────────────────
	file, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("seed: open definitions: %w", err)
	}
	defer file.Close()

	definitions, err := usergroup.ParseDefinitions(file)
	if err != nil {
		return err
	}

	groups, err := service.InstallDefinitions(context, opts.contextID, definitions)
	if err != nil {
		return err
	}

	for _, group := range groups {
		log.Info("group_installed",
			slog.Int64("id", group.ID),
			slog.String("path", group.Path),
			slog.Bool("default", group.IsDefault),
		)
	}
	log.Info("definitions_installed", slog.Int64("context_id", opts.contextID), slog.Int("count", len(groups)))
	return nil
}
