package config

import (
	"github.com/Veraticus/upi-triage/internal/sheets"
	"github.com/spf13/viper"
)

// Sheets configuration keys.
const (
	KeySheetsServiceAccount = "sheets.service_account_path"
	KeySheetsClientID       = "sheets.client_id"
	KeySheetsClientSecret   = "sheets.client_secret"
	KeySheetsRefreshToken   = "sheets.refresh_token"
	KeySheetsSpreadsheetID  = "sheets.spreadsheet_id"
	KeySheetsName           = "sheets.spreadsheet_name"
	KeySheetsTimeZone       = "sheets.timezone"
	KeySheetsTokenFile      = "sheets.token_file"
)

// LoadSheetsConfig loads Google Sheets configuration. Values from v (config
// file or TRIAGE_ env vars) win over GOOGLE_SHEETS_* variables, which win
// over the defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString(KeySheetsServiceAccount))
	config.ClientID = v.GetString(KeySheetsClientID)
	config.ClientSecret = v.GetString(KeySheetsClientSecret)
	config.RefreshToken = v.GetString(KeySheetsRefreshToken)
	config.SpreadsheetID = v.GetString(KeySheetsSpreadsheetID)
	config.SpreadsheetName = v.GetString(KeySheetsName)
	if tz := v.GetString(KeySheetsTimeZone); tz != "" {
		config.TimeZone = tz
	}

	if config.RefreshToken == "" && config.ServiceAccountPath == "" {
		if token, err := sheets.LoadToken(SheetsTokenFile(v)); err == nil {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsTokenFile is where the sheets-auth command stores its OAuth token.
func SheetsTokenFile(v *viper.Viper) string {
	if path := v.GetString(KeySheetsTokenFile); path != "" {
		return ExpandPath(path)
	}
	return ExpandPath(DefaultSheetsToken)
}
