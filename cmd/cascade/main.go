// Package main provides the cascade admin CLI for managing workflows and
// injecting events.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/daryako/cascade/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "cascade",
		Usage:                 "Create and manage event-driven workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			workflowCommand(),
			triggerCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cascade").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
