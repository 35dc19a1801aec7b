// Package config loads server configuration from a TOML file with
// environment fallbacks for secrets.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/erdraw/erdraw/pkg/errors"
)

// Defaults applied when the config file is absent or partial.
const (
	DefaultAddr        = ":8080"
	DefaultFrontendDir = "web"
	DefaultCacheKind   = "file"
	DefaultStoreKind   = "memory"
	DefaultMongoDB     = "erdraw"

	// DefaultAPIKeyEnv names the environment variable holding the chat
	// API key. Secrets never live in the config file itself.
	DefaultAPIKeyEnv = "DASHSCOPE_API_KEY"
)

// Config is the full server configuration.
type Config struct {
	Addr        string `toml:"addr"`
	FrontendDir string `toml:"frontend_dir"`

	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
	Chat  ChatConfig  `toml:"chat"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Kind          string `toml:"kind"` // "file", "redis", or "none"
	Dir           string `toml:"dir"`  // file backend only
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects and configures the diagram store.
type StoreConfig struct {
	Kind     string `toml:"kind"` // "memory" or "mongo"
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// ChatConfig configures the upstream chat API.
type ChatConfig struct {
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`

	// APIKey is resolved from the environment at load time, never read
	// from the file.
	APIKey string `toml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Addr:        DefaultAddr,
		FrontendDir: DefaultFrontendDir,
		Cache:       CacheConfig{Kind: DefaultCacheKind},
		Store:       StoreConfig{Kind: DefaultStoreKind, MongoDB: DefaultMongoDB},
		Chat:        ChatConfig{APIKeyEnv: DefaultAPIKeyEnv},
	}
}

// Load reads the TOML file at path, fills in defaults, and resolves the
// chat API key from the environment. A missing file is not an error; the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
			}
		}
	}

	cfg.applyDefaults()
	cfg.Chat.APIKey = os.Getenv(cfg.Chat.APIKeyEnv)
	if cfg.Chat.APIKey == "" && cfg.Chat.APIKeyEnv != "OPENAI_API_KEY" {
		// Same fallback chain the upstream API documents.
		cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, cfg.validate()
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.FrontendDir == "" {
		c.FrontendDir = DefaultFrontendDir
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = DefaultCacheKind
	}
	if c.Store.Kind == "" {
		c.Store.Kind = DefaultStoreKind
	}
	if c.Store.MongoDB == "" {
		c.Store.MongoDB = DefaultMongoDB
	}
	if c.Chat.APIKeyEnv == "" {
		c.Chat.APIKeyEnv = DefaultAPIKeyEnv
	}
}

func (c *Config) validate() error {
	switch c.Cache.Kind {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache.kind %q (must be file, redis, or none)", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}

	switch c.Store.Kind {
	case "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid store.kind %q (must be memory or mongo)", c.Store.Kind)
	}
	if c.Store.Kind == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
	}

	if c.Chat.BaseURL != "" {
		if err := errors.ValidateURL(c.Chat.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid chat.base_url")
		}
	}
	return nil
}
