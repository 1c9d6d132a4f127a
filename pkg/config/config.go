// Package config loads gh-notifier settings from defaults, a YAML file and
// the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-training/gh-notifier/pkg/callback"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/store"

	"gopkg.in/yaml.v3"
)

const (
	appDir         = "gh-notifier"
	configFileName = "config.yaml"

	// DefaultServerAddr is the loopback address the MCP HTTP transport binds by default.
	DefaultServerAddr = "127.0.0.1:8080"
)

var (
	// ErrMissingClientID is returned by Validate when no OAuth client id is configured.
	ErrMissingClientID = errors.New("github client id is required (GITHUB_CLIENT_ID)")
	// ErrMissingClientSecret is returned by Validate when no OAuth client secret is configured.
	ErrMissingClientSecret = errors.New("github client secret is required (GITHUB_CLIENT_SECRET)")
	// ErrInvalidStore is returned by Validate for an unknown store type.
	ErrInvalidStore = errors.New("invalid store type")
)

// Config is the full application configuration.
type Config struct {
	GitHub GitHub `yaml:"github"`
	Store  Store  `yaml:"store"`
	Log    Log    `yaml:"log"`
	Notify Notify `yaml:"notify"`
	Server Server `yaml:"server"`
}

// GitHub configures the OAuth app and API endpoints.
type GitHub struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
	CallbackAddr string   `yaml:"callback_addr"`
	APIBaseURL   string   `yaml:"api_base_url"`
	AuthBaseURL  string   `yaml:"auth_base_url"`
}

// Store selects where the token and OAuth state are kept.
type Store struct {
	Type  string `yaml:"type"`
	Path  string `yaml:"path"`
	Redis Redis  `yaml:"redis"`
}

// Redis configures the redis store.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	NonceTTL time.Duration `yaml:"nonce_ttl"`
}

// Log configures the application logger.
type Log struct {
	Level string `yaml:"level"`
}

// Notify configures desktop notifications.
type Notify struct {
	Interval time.Duration `yaml:"interval"`
	Icon     string        `yaml:"icon"`
}

// Server configures the MCP server.
type Server struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		GitHub: GitHub{
			Scopes:       []string{"notifications"},
			CallbackAddr: callback.DefaultAddr,
			APIBaseURL:   github.DefaultAPIBaseURL,
			AuthBaseURL:  github.DefaultAuthBaseURL,
		},
		Store: Store{
			Type: string(store.StoreTypeFile),
			Redis: Redis{
				Addr:     "localhost:6379",
				NonceTTL: callback.Timeout,
			},
		},
		Log:    Log{Level: "info"},
		Notify: Notify{Interval: time.Minute},
		Server: Server{Transport: "stdio", Addr: DefaultServerAddr},
	}
}

// DefaultPath returns ~/.config/gh-notifier/config.yaml, or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(dir, appDir, configFileName), nil
}

// Load reads path over the defaults, then applies the environment. An empty
// path uses DefaultPath. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("no config file found, using defaults", "path", path)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		slog.Debug("loaded configuration", "path", path)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("GITHUB_CLIENT_ID", &c.GitHub.ClientID)
	str("GITHUB_CLIENT_SECRET", &c.GitHub.ClientSecret)
	str("NOTIFIER_STORE", &c.Store.Type)
	str("NOTIFIER_STORE_PATH", &c.Store.Path)
	str("REDIS_ADDR", &c.Store.Redis.Addr)
	str("REDIS_PASSWORD", &c.Store.Redis.Password)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

// Validate checks the settings needed for every command.
func (c Config) Validate() error {
	if !store.StoreType(strings.ToLower(c.Store.Type)).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store.Type)
	}
	return nil
}

// ValidateLogin also checks the OAuth app credentials.
func (c Config) ValidateLogin() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.GitHub.ClientID) == "" {
		return ErrMissingClientID
	}
	if strings.TrimSpace(c.GitHub.ClientSecret) == "" {
		return ErrMissingClientSecret
	}
	return nil
}

// StoreConfig maps the store section onto a store.Config.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Type: store.ParseStoreType(c.Store.Type),
		Path: c.Store.Path,
		Redis: store.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			NonceTTL: c.Store.Redis.NonceTTL,
		},
	}
}

// GitHubConfig maps the github section onto a github.Config. redirectURL is
// the address the callback server actually bound.
func (c Config) GitHubConfig(redirectURL string) github.Config {
	return github.Config{
		ClientID:     c.GitHub.ClientID,
		ClientSecret: c.GitHub.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       c.GitHub.Scopes,
		APIBaseURL:   c.GitHub.APIBaseURL,
		AuthBaseURL:  c.GitHub.AuthBaseURL,
	}
}
