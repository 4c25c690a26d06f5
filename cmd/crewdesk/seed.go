// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/internal/account/postgres"
	"github.com/crewdesk/crewdesk/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	email     string
	firstName string
	lastName  string
	timeout   time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial administrator account",
		Long: `Creates an initial administrator account so the service can be
bootstrapped. The password is read from the CREWDESK_ADMIN_PASSWORD
environment variable. This command is idempotent - it will not create
duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "admin@crewdesk.local", "administrator email address")
	cmd.Flags().StringVar(&cfg.firstName, "first-name", "System", "administrator first name")
	cmd.Flags().StringVar(&cfg.lastName, "last-name", "Administrator", "administrator last name")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	password := os.Getenv("CREWDESK_ADMIN_PASSWORD")
	if password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("CREWDESK_ADMIN_PASSWORD environment variable is required")
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	if migrateErr := migrator.Up(); migrateErr != nil {
		_ = migrator.Close()
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(migrateErr)
	}
	if closeErr := migrator.Close(); closeErr != nil {
		slog.Warn("error closing migrator", "error", closeErr)
	}

	cmd.Println("Connecting to database...")
	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool)
	svc, err := account.NewService(repo, account.NewBcryptHasher())
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "create account service").Wrap(err)
	}

	created, err := svc.Register(ctx, account.RegisterInput{
		FirstName: cfg.firstName,
		LastName:  cfg.lastName,
		Email:     cfg.email,
		Password:  password,
		Role:      account.RoleAdmin,
	})
	if err != nil {
		// Duplicate email means seeding already happened; not an error
		if errors.Is(err, account.ErrEmailExists) {
			cmd.Println("Administrator account already exists, skipping seed")
			slog.Info("administrator already seeded", "email", account.NormalizeEmail(cfg.email))
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create administrator account").Wrap(err)
	}

	cmd.Printf("Created administrator account: %s\n", created.Email)
	slog.Info("created administrator account", "id", created.ID, "email", created.Email)

	cmd.Println("Seeding complete!")
	return nil
}
