// Package config holds the process-wide settings shared by the login client,
// the terminal form, and the auth service.
//
// Settings are loaded once at startup (see Load) and handed around by value,
// so nothing downstream can mutate them.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rohanthewiz/serr"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// ITLA_API_BASE_URL or ITLA_TIMEOUTS__REDIRECT_DELAY_MS.
const EnvPrefix = "ITLA_"

// DefaultTokenType is the token kind assumed when the server omits one.
const DefaultTokenType = "bearer"

// MinJWTSecretLength is the minimum acceptable length for the signing key
const MinJWTSecretLength = 32

// Settings is the static configuration of the application.
type Settings struct {
	APIBaseURL  string         `koanf:"api_base_url"`
	Endpoints   Endpoints      `koanf:"endpoints"`
	StorageKeys StorageKeys    `koanf:"storage_keys"`
	Timeouts    Timeouts       `koanf:"timeouts"`
	StorageDir  string         `koanf:"storage_dir"`
	LogLevel    string         `koanf:"log_level"`
	Server      ServerSettings `koanf:"server"`
}

// Endpoints are the auth API paths, relative to APIBaseURL.
type Endpoints struct {
	Login    string `koanf:"login"`
	Register string `koanf:"register"`
	Verify   string `koanf:"verify"`
}

// StorageKeys name the durable slots of the token store.
type StorageKeys struct {
	AccessToken string `koanf:"access_token"`
	TokenType   string `koanf:"token_type"`
	UserData    string `koanf:"user_data"`
}

// Timeouts are expressed in milliseconds.
type Timeouts struct {
	AlertAutoHideMS int `koanf:"alert_auto_hide_ms"`
	RedirectDelayMS int `koanf:"redirect_delay_ms"`
	RequestMS       int `koanf:"request_ms"` // 0 means no client-side timeout
}

// AlertAutoHide is how long a dismissible alert stays on screen.
func (t Timeouts) AlertAutoHide() time.Duration {
	return time.Duration(t.AlertAutoHideMS) * time.Millisecond
}

// RedirectDelay is the pause between a successful login and the redirect.
func (t Timeouts) RedirectDelay() time.Duration {
	return time.Duration(t.RedirectDelayMS) * time.Millisecond
}

// Request is the per-request client timeout; zero disables it.
func (t Timeouts) Request() time.Duration {
	return time.Duration(t.RequestMS) * time.Millisecond
}

// ServerSettings configure the auth service (`itla serve`).
type ServerSettings struct {
	Address            string `koanf:"address"`
	DBPath             string `koanf:"db_path"`
	JWTSecret          string `koanf:"jwt_secret"`
	TokenTTLMinutes    int    `koanf:"token_ttl_minutes"`
	LoginRatePerMinute int    `koanf:"login_rate_per_minute"`
}

// TokenTTL is the lifetime of issued access tokens.
func (s ServerSettings) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

// devJWTSecret is only used when no secret is configured.
const devJWTSecret = "development-only-secret-do-not-use-in-production"

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		APIBaseURL: "http://127.0.0.1:8000",
		Endpoints: Endpoints{
			Login:    "/internal/auth/login",
			Register: "/internal/auth/registrar",
			Verify:   "/internal/auth/verify",
		},
		StorageKeys: StorageKeys{
			AccessToken: "accessToken",
			TokenType:   "tokenType",
			UserData:    "userData",
		},
		Timeouts: Timeouts{
			AlertAutoHideMS: 5000,
			RedirectDelayMS: 2000,
		},
		StorageDir: DefaultStorageDir(),
		LogLevel:   "info",
		Server: ServerSettings{
			Address:            "127.0.0.1:8000",
			DBPath:             "./data/itla.ddb",
			JWTSecret:          devJWTSecret,
			TokenTTLMinutes:    60,
			LoginRatePerMinute: 30,
		},
	}
}

// DefaultStorageDir is where the durable token store lives.
func DefaultStorageDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".itla", "session")
	}
	return filepath.Join(homeDir, ".itla", "session")
}

// DefaultConfigPath returns the config file looked up when none is given.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "itla.yaml"
	}
	return filepath.Join(homeDir, ".itla", "itla.yaml")
}

// Validate fails fast on settings that would only break later.
func (s Settings) Validate() error {
	if s.APIBaseURL == "" {
		return serr.New("api_base_url is required")
	}
	if s.Endpoints.Login == "" || s.Endpoints.Register == "" {
		return serr.New("login and register endpoints are required")
	}
	if s.StorageKeys.AccessToken == "" || s.StorageKeys.TokenType == "" || s.StorageKeys.UserData == "" {
		return serr.New("all storage keys must be named")
	}
	if s.Timeouts.AlertAutoHideMS < 0 || s.Timeouts.RedirectDelayMS < 0 || s.Timeouts.RequestMS < 0 {
		return serr.New("timeouts cannot be negative")
	}
	return nil
}

// ValidateServer checks the settings only `serve` depends on.
func (s Settings) ValidateServer() error {
	if s.Server.Address == "" {
		return serr.New("server.address is required")
	}
	if s.Server.DBPath == "" {
		return serr.New("server.db_path is required")
	}
	if len(s.Server.JWTSecret) < MinJWTSecretLength {
		return serr.New("server.jwt_secret must be at least 32 characters")
	}
	if s.Server.TokenTTLMinutes <= 0 {
		return serr.New("server.token_ttl_minutes must be positive")
	}
	return nil
}

// UsingDevSecret reports whether the signing key is the built-in one.
func (s Settings) UsingDevSecret() bool {
	return s.Server.JWTSecret == devJWTSecret
}
