package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session role and permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			session := a.session(cmd.Context())
			role := "unknown"
			if session.Role != "" {
				role = session.Role.DisplayName()
			}

			perms := session.Permissions().List()
			names := make([]string, 0, len(perms))
			for _, p := range perms {
				names = append(names, string(p))
			}

			token := "none"
			if a.credentials.Token() != "" {
				token = "stored in " + a.credentials.Path()
				if a.settings.APIToken != "" {
					token = "set in configuration"
				}
			}

			a.println(cli.RenderKeyValues([][2]string{
				{"Role", role},
				{"Backend", a.client.BaseURL()},
				{"Token", token},
				{"Permissions", strings.Join(names, ", ")},
			}))
			if session.LoadErr != nil {
				a.println(cli.FormatWarning(fmt.Sprintf("Session fell back to read-only access: %v", session.LoadErr)))
			}
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a backend bearer token",
		Long: `Store the bearer token sent to the backend.

Pass it with --token or paste it on standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			if token == "" {
				a.printf("%s", cli.FormatPrompt("Token: "))
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				token, err = reader.ReadLine(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
			}

			if err := a.credentials.Save(token); err != nil {
				return err
			}
			a.println(cli.FormatSuccess("Token saved to " + a.credentials.Path()))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored backend token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.credentials.Clear(); err != nil {
				return err
			}
			a.println(cli.FormatSuccess("Logged out"))
			if a.settings.APIToken != "" {
				a.println(cli.FormatWarning("api.token is still set in configuration and will be used on the next run"))
			}
			return nil
		},
	}
}
