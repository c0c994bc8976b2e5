package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/cmd/app/commands"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/app"
)

func serviceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "service",
		Aliases:  []string{"s"},
		Required: true,
		Usage:    "Service name (" + strings.Join(app.ServiceNames(), ", ") + ")",
	}
}

func getWorkerCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "consumer",
			Usage: "Consume the events of one service",
			Flags: []cli.Flag{serviceFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunConsumer(ctx, cmd.String("service"))
			},
		},
		{
			Name:  "relay",
			Usage: "Publish the outbox events of one service",
			Flags: []cli.Flag{serviceFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunRelay(ctx, cmd.String("service"))
			},
		},
	}
}
