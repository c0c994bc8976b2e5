package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/cmd/app/commands"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/app"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP API of every service",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "standalone",
			Usage: "Run the API, every consumer and every outbox relay in one process",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunStandalone(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
