package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"contact-relay-go/internal/app"
	"contact-relay-go/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contact-relay",
		Short:         "Contact form relay with spam filtering and rate limiting",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}
	config.RegisterFlags(cmd)
	cmd.AddCommand(newGmailTokenCmd())
	return cmd
}

func main() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file loaded")
	}

	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}
