package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Loader merges settings from several sources.
// Precedence, lowest first: defaults, YAML file, .env + environment, overrides (flags).
type Loader struct {
	k            *koanf.Koanf
	filePath     string
	fileOptional bool
	envFiles     []string
	overrides    map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfigFile reads a YAML file; a missing file is an error.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.filePath = path
			l.fileOptional = false
		}
	}
}

// WithEnvFiles replaces the dotenv files loaded before reading the environment.
// Files that do not exist are skipped; no arguments disables dotenv loading.
func WithEnvFiles(paths ...string) Option {
	return func(l *Loader) {
		l.envFiles = paths
	}
}

// WithOverrides applies dotted keys (e.g. "server.address") last.
// Empty string values are ignored so unset flags don't clobber other sources.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		for key, v := range values {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			l.overrides[key] = v
		}
	}
}

// NewLoader creates a loader that looks for DefaultConfigPath and ./.env by default.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:            koanf.New("."),
		filePath:     DefaultConfigPath(),
		fileOptional: true,
		envFiles:     []string{".env"},
		overrides:    map[string]any{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is shorthand for NewLoader(opts...).Load().
func Load(opts ...Option) (Settings, error) {
	return NewLoader(opts...).Load()
}

// Load resolves all sources into validated Settings.
func (l *Loader) Load() (Settings, error) {
	var s Settings

	if err := l.k.Load(mapProvider(defaultsMap(Default())), nil); err != nil {
		return s, serr.Wrap(err, "failed to load default settings")
	}

	if err := l.loadFile(); err != nil {
		return s, err
	}

	for _, path := range l.envFiles {
		if err := godotenv.Load(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return s, serr.Wrap(err, "failed to load env file "+path)
			}
			continue
		}
		logger.Debug("Loaded env file", "path", path)
	}

	if err := l.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return s, serr.Wrap(err, "failed to load environment settings")
	}

	if len(l.overrides) > 0 {
		if err := l.k.Load(mapProvider(unflatten(l.overrides)), nil); err != nil {
			return s, serr.Wrap(err, "failed to apply overrides")
		}
	}

	if err := l.k.Unmarshal("", &s); err != nil {
		return s, serr.Wrap(err, "failed to decode settings")
	}

	s.APIBaseURL = strings.TrimRight(s.APIBaseURL, "/")

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (l *Loader) loadFile() error {
	if l.filePath == "" {
		return nil
	}
	if _, err := os.Stat(l.filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) && l.fileOptional {
			return nil
		}
		return serr.Wrap(err, "config file not readable: "+l.filePath)
	}
	if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
		return serr.Wrap(err, "failed to parse config file "+l.filePath)
	}
	logger.Debug("Loaded config file", "path", l.filePath)
	return nil
}

// envKey maps ITLA_TIMEOUTS__REDIRECT_DELAY_MS to timeouts.redirect_delay_ms.
// A double underscore separates sections; single underscores stay in the key.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// mapProvider feeds an in-memory map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// unflatten turns {"server.address": x} into {"server": {"address": x}}.
func unflatten(flat map[string]any) map[string]any {
	out := map[string]any{}
	for key, v := range flat {
		parts := strings.Split(key, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out
}

func defaultsMap(s Settings) map[string]any {
	return map[string]any{
		"api_base_url": s.APIBaseURL,
		"endpoints": map[string]any{
			"login":    s.Endpoints.Login,
			"register": s.Endpoints.Register,
			"verify":   s.Endpoints.Verify,
		},
		"storage_keys": map[string]any{
			"access_token": s.StorageKeys.AccessToken,
			"token_type":   s.StorageKeys.TokenType,
			"user_data":    s.StorageKeys.UserData,
		},
		"timeouts": map[string]any{
			"alert_auto_hide_ms": s.Timeouts.AlertAutoHideMS,
			"redirect_delay_ms":  s.Timeouts.RedirectDelayMS,
			"request_ms":         s.Timeouts.RequestMS,
		},
		"storage_dir": s.StorageDir,
		"log_level":   s.LogLevel,
		"server": map[string]any{
			"address":               s.Server.Address,
			"db_path":               s.Server.DBPath,
			"jwt_secret":            s.Server.JWTSecret,
			"token_ttl_minutes":     s.Server.TokenTTLMinutes,
			"login_rate_per_minute": s.Server.LoginRatePerMinute,
		},
	}
}
