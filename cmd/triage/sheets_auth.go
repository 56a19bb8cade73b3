package main

import (
	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/config"
	"github.com/Veraticus/upi-triage/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func sheetsAuthCmd() *cobra.Command {
	var clientID, clientSecret, callbackAddr string

	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets report publishing",
		Long: `Run the browser OAuth2 flow for Google Sheets and store the refresh token.

'triage export sheets' uses the stored token when no service account is configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.GetViper()
			if clientID == "" {
				clientID = v.GetString(config.KeySheetsClientID)
			}
			if clientSecret == "" {
				clientSecret = v.GetString(config.KeySheetsClientSecret)
			}
			if clientID == "" || clientSecret == "" {
				return common.NewUserError(
					"Set sheets.client_id and sheets.client_secret, or pass --client-id and --client-secret",
					common.ErrMissingConfig,
				)
			}

			tokenFile := config.SheetsTokenFile(v)
			if err := config.EnsureParent(tokenFile); err != nil {
				return err
			}

			token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: callbackAddr,
			})
			if err != nil {
				return err
			}
			if token.RefreshToken == "" {
				cmd.Println(cli.FormatWarning("Google did not return a refresh token; revoke access and try again"))
				return nil
			}
			cmd.Println(cli.FormatSuccess("Sheets authorization saved to " + tokenFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&callbackAddr, "callback-addr", sheets.DefaultCallbackAddr, "address for the OAuth2 redirect listener")
	return cmd
}
