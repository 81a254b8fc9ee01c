// Package main provides the cascade engine: the long-running process that
// consumes events from the bus and runs matching workflows.
package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/daryako/cascade/pkg/cmd"
	"github.com/daryako/cascade/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "cascade-engine",
		EnableShellCompletion: true,
		Usage:                 "Run the event-driven workflow engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "vault-path",
				Usage:   "Root directory for staged artifacts",
				Value:   ".",
				Sources: cli.EnvVars("VAULT_PATH"),
			},
			&cli.StringFlag{
				Name:    "audit-path",
				Usage:   "Directory for audit records",
				Value:   "Logs/audit",
				Sources: cli.EnvVars("AUDIT_PATH"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML engine config with vault paths and cron schedules",
				Value:   "",
				Sources: cli.EnvVars("CASCADE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "engine-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("cascade-engine").With("worker_id", workerID)
			logger.InfoContext(ctx, "Initializing Cascade engine")

			persistence, err := cmd.NewPersistence(command.String("database-url"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			engine, err := NewEngine(EngineConfig{
				WorkerID:   workerID,
				VaultPath:  command.String("vault-path"),
				AuditPath:  command.String("audit-path"),
				ConfigFile: command.String("config"),
			}, persistence, eventBus, logger)
			if err != nil {
				return err
			}

			return engine.Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
