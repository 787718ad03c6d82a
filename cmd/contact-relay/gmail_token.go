package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/mailer"
)

// newGmailTokenCmd walks through the OAuth consent flow and prints the
// refresh token the gmail provider needs.
func newGmailTokenCmd() *cobra.Command {
	var redirectURL string

	cmd := &cobra.Command{
		Use:   "gmail-token",
		Short: "Obtain a Gmail refresh token for EMAIL_PROVIDER=gmail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Email.Gmail.ClientID == "" || cfg.Email.Gmail.ClientSecret == "" {
				return fmt.Errorf("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
			}

			oauthConfig := mailer.GmailOAuthConfig(cfg.Email.Gmail, redirectURL)
			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Go to the following link in your browser: %v\n", authURL)
			fmt.Fprintln(out, "\nAfter authorization, you'll be redirected to a URL. Copy the 'code' parameter from that URL.")
			fmt.Fprint(out, "\nEnter the authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(code) == "" {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}

			tok, err := oauthConfig.Exchange(context.Background(), strings.TrimSpace(code))
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Fprintln(out, "\nAdd the refresh token to your environment variables:")
			fmt.Fprintf(out, "export GMAIL_REFRESH_TOKEN=\"%s\"\n", tok.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&redirectURL, "redirect-url", "http://localhost:8080/callback", "OAuth redirect URL registered for the client")
	cmd.Flags().String("config", "", "Path to a YAML config file")
	return cmd
}
