package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/daryako/cascade/pkg/cmd"
	"github.com/daryako/cascade/pkg/events"
	"github.com/daryako/cascade/pkg/log"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/workflow"
)

func newRepository(command *cli.Command) (*workflow.Repository, error) {
	log.Setup(command.String("log-level"))

	store, err := cmd.NewPersistence(command.String("database-url"), log.WithModule("cascade"))
	if err != nil {
		return nil, err
	}

	return workflow.NewRepository(store), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

func workflowCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflow",
		Aliases: []string{"w"},
		Usage:   "Manage workflow definitions",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all workflows",
				Action: func(ctx context.Context, command *cli.Command) error {
					repo, err := newRepository(command)
					if err != nil {
						return err
					}

					workflows, err := repo.FetchAll(ctx)
					if err != nil {
						return err
					}

					for _, wf := range workflows {
						state := "disabled"
						if wf.Enabled {
							state = "enabled"
						}

						fmt.Printf("%s\t%s\t%s\t%s\truns=%d\n",
							wf.ID, wf.Name, wf.TriggerEvent, state, wf.ExecutionCount)
					}

					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Show one workflow as JSON",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					repo, err := newRepository(command)
					if err != nil {
						return err
					}

					wf, err := repo.FetchByID(ctx, command.Args().First())
					if err != nil {
						return err
					}

					return printJSON(wf)
				},
			},
			{
				Name:      "create",
				Usage:     "Create a workflow from a JSON definition file",
				ArgsUsage: "<definition.json>",
				Action: func(ctx context.Context, command *cli.Command) error {
					body, err := os.ReadFile(command.Args().First())
					if err != nil {
						return fmt.Errorf("failed to read definition: %w", err)
					}

					var wf models.Workflow
					if err := json.Unmarshal(body, &wf); err != nil {
						return fmt.Errorf("failed to parse definition: %w", err)
					}

					repo, err := newRepository(command)
					if err != nil {
						return err
					}

					created, err := repo.Create(ctx, &wf)
					if err != nil {
						return err
					}

					return printJSON(created)
				},
			},
			{
				Name:      "enable",
				Usage:     "Enable a workflow",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					return setEnabled(ctx, command, true)
				},
			},
			{
				Name:      "disable",
				Usage:     "Disable a workflow",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					return setEnabled(ctx, command, false)
				},
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a workflow",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					repo, err := newRepository(command)
					if err != nil {
						return err
					}

					id := command.Args().First()
					if err := repo.Delete(ctx, id); err != nil {
						return err
					}

					fmt.Println("deleted", id)

					return nil
				},
			},
		},
	}
}

func setEnabled(ctx context.Context, command *cli.Command, enabled bool) error {
	repo, err := newRepository(command)
	if err != nil {
		return err
	}

	wf, err := repo.SetEnabled(ctx, command.Args().First(), enabled)
	if err != nil {
		return err
	}

	return printJSON(wf)
}

func triggerCommand() *cli.Command {
	return &cli.Command{
		Name:      "trigger",
		Aliases:   []string{"t"},
		Usage:     "Publish a domain event onto the bus",
		ArgsUsage: "<event-type>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Source system name carried on the event",
				Value:   "cli",
				Sources: cli.EnvVars("EVENT_SOURCE"),
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Event data as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cascade")

			eventType := models.EventType(command.Args().First())
			if !eventType.Valid() {
				return fmt.Errorf("unknown event type %q", eventType)
			}

			var data map[string]any
			if err := json.Unmarshal([]byte(command.String("data")), &data); err != nil {
				return fmt.Errorf("failed to parse event data: %w", err)
			}

			bus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := bus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			event := models.NewEvent(eventType, command.String("source"), data)
			envelope := events.EventReceived{
				BaseEvent: events.BaseEvent{
					ID:        bus.GenerateID(),
					Type:      events.EventReceivedType,
					Timestamp: time.Now().UTC(),
				},
				Event: event,
			}

			if err := bus.Publish(ctx, event.ID, envelope); err != nil {
				return err
			}

			fmt.Println("published", event.ID)

			return nil
		},
	}
}
