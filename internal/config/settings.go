package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIURL             = "api.url"
	KeyAPIToken           = "api.token"
	KeyAPITimeout         = "api.timeout"
	KeyAPITokenFile       = "api.token_file"
	KeyAPIFetchLimit      = "api.fetch_limit"
	KeySessionRole        = "session.role"
	KeySessionPermissions = "session.permissions"
	KeyStoragePath        = "storage.path"
	KeyStorageKeep        = "storage.keep_snapshots"
	KeyUIPageSize         = "ui.page_size"
	KeyLogFile            = "logging.file"
)

// Defaults for keys that are not set anywhere.
const (
	DefaultAPIURL        = "http://localhost:8000"
	DefaultAPITimeout    = 30 * time.Second
	DefaultFetchLimit    = 100
	DefaultKeepSnapshots = 5
	DefaultPageSize      = 10
)

// Settings is the resolved configuration.
type Settings struct {
	APIURL        string
	APIToken      string
	TokenFile     string
	Role          string
	StoragePath   string
	LogFile       string
	Permissions   []string
	APITimeout    time.Duration
	FetchLimit    int
	KeepSnapshots int
	PageSize      int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyAPITimeout, DefaultAPITimeout)
	v.SetDefault(KeyAPITokenFile, DefaultTokenFile)
	v.SetDefault(KeyAPIFetchLimit, DefaultFetchLimit)
	v.SetDefault(KeySessionRole, string(permission.DefaultRole))
	v.SetDefault(KeyStoragePath, DefaultStoragePath)
	v.SetDefault(KeyStorageKeep, DefaultKeepSnapshots)
	v.SetDefault(KeyUIPageSize, DefaultPageSize)
	v.SetDefault(KeyLogFile, DefaultLogFile)
}

// Load reads and validates Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		APIURL:        strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		APIToken:      strings.TrimSpace(v.GetString(KeyAPIToken)),
		APITimeout:    v.GetDuration(KeyAPITimeout),
		TokenFile:     ExpandPath(v.GetString(KeyAPITokenFile)),
		FetchLimit:    v.GetInt(KeyAPIFetchLimit),
		Role:          strings.TrimSpace(v.GetString(KeySessionRole)),
		Permissions:   v.GetStringSlice(KeySessionPermissions),
		StoragePath:   ExpandPath(v.GetString(KeyStoragePath)),
		KeepSnapshots: v.GetInt(KeyStorageKeep),
		PageSize:      v.GetInt(KeyUIPageSize),
		LogFile:       ExpandPath(v.GetString(KeyLogFile)),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges. Role and permission names are checked when
// the session loads so a typo degrades to the fallback session.
func (s Settings) Validate() error {
	if s.APIURL == "" {
		return fmt.Errorf("%w: %s is empty", common.ErrMissingConfig, KeyAPIURL)
	}
	u, err := url.Parse(s.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, KeyAPIURL, s.APIURL)
	}
	if s.APITimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyAPITimeout)
	}
	if s.FetchLimit <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyAPIFetchLimit)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyUIPageSize)
	}
	if s.KeepSnapshots <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyStorageKeep)
	}
	return nil
}

// Identity returns the identity source for the permission session.
func (s Settings) Identity() permission.IdentitySource {
	return permission.StaticIdentity(permission.Identity{
		Role:              s.Role,
		CustomPermissions: s.Permissions,
	})
}
