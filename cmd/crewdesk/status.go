// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdesk/crewdesk/internal/store"
)

// Timeout for status database checks.
const statusPingTimeout = 5 * time.Second

// ServiceStatus holds the status information reported by the status command.
type ServiceStatus struct {
	DatabaseReachable bool   `json:"database_reachable"`
	SchemaVersion     uint   `json:"schema_version"`
	SchemaDirty       bool   `json:"schema_dirty"`
	PendingMigrations int    `json:"pending_migrations"`
	Error             string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and migration status",
		Long:  `Show database reachability, current schema version, and pending migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	status := queryServiceStatus(cmd.Context(), databaseURL)

	var output string
	if cfg.jsonOutput {
		output, err = formatStatusJSON(status)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

// queryServiceStatus checks database connectivity and migration state.
func queryServiceStatus(ctx context.Context, databaseURL string) ServiceStatus {
	var status ServiceStatus

	pingCtx, cancel := context.WithTimeout(ctx, statusPingTimeout)
	defer cancel()

	pool, err := store.NewPool(pingCtx, databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer pool.Close()
	status.DatabaseReachable = true

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to create migrator: %v", err)
		return status
	}
	defer func() { _ = migrator.Close() }()

	current, dirty, err := migrator.Version()
	if err != nil {
		status.Error = fmt.Sprintf("failed to read schema version: %v", err)
		return status
	}
	status.SchemaVersion = current
	status.SchemaDirty = dirty

	versions, err := store.MigrationVersions()
	if err != nil {
		status.Error = fmt.Sprintf("failed to list migrations: %v", err)
		return status
	}
	for _, v := range versions {
		if v > current {
			status.PendingMigrations++
		}
	}

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServiceStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	database := "unreachable"
	if status.DatabaseReachable {
		database = "ok"
	}
	schema := fmt.Sprintf("%d", status.SchemaVersion)
	if status.SchemaDirty {
		schema += " (dirty)"
	}

	_, _ = fmt.Fprintln(w, "DATABASE\tSCHEMA\tPENDING")
	_, _ = fmt.Fprintln(w, "--------\t------\t-------")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", database, schema, status.PendingMigrations)
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "error:\t%s\n", status.Error)
	}

	_ = w.Flush()
	return string(buf)
}

// formatStatusJSON formats the status as JSON.
func formatStatusJSON(status ServiceStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
