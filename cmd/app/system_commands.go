package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/emergencyconnect/kms/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the key management HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "version",
			Usage: "Print the service version",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				fmt.Fprintln(commands.DefaultIO().Writer, version)
				return nil
			},
		},
	}
}
