package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/emergencyconnect/kms/cmd/app/commands"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-secrets",
			Usage: "Generate a master secret and derivation salt for production use",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Aliases: []string{"k"},
					Value:   "",
					Usage:   "KMS key URI to encrypt the master secret with (e.g., gcpkms://..., base64key://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateSecrets(
					ctx,
					service.NewKeeperOpener(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
