package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/taghunt/internal/txn"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "TAGHUNT_CONFIG"

// Config holds application configuration.
type Config struct {
	CapabilityName string        `mapstructure:"capability_name"`
	Prompts        PromptsConfig `mapstructure:"prompts"`
	Session        SessionConfig `mapstructure:"session"`
	Journal        JournalConfig `mapstructure:"journal"`
	Log            LogConfig     `mapstructure:"log"`
}

// PromptsConfig holds the text shown during a session.
type PromptsConfig struct {
	Start        string `mapstructure:"start"`
	ReadSuccess  string `mapstructure:"read_success"`
	WriteSuccess string `mapstructure:"write_success"`
}

// SessionConfig bounds how long an operation may wait for a tag.
type SessionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// JournalConfig holds the outcome journal location. An empty path
// disables the journal.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from defaults, file and env. Env var overrides
// use prefix TAGHUNT_.
//
// path selects a config file explicitly; when empty, TAGHUNT_CONFIG is
// consulted, then ~/.config/taghunt/config.{yaml,toml,json}. An explicit
// file must exist; the fallback location is optional.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "taghunt"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TAGHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Log.Level = strings.ToLower(c.Log.Level)

	if err := Validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	p := txn.DefaultPrompts()
	v.SetDefault("capability_name", "NFC reading")
	v.SetDefault("prompts.start", p.Start)
	v.SetDefault("prompts.read_success", p.ReadSuccess)
	v.SetDefault("prompts.write_success", p.WriteSuccess)
	v.SetDefault("session.timeout", "60s")
	v.SetDefault("journal.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "taghunt", "journal.db"))
	v.SetDefault("log.level", "info")
}

// TxnPrompts converts the prompt settings for transactions.
func (c Config) TxnPrompts() txn.Prompts {
	return txn.Prompts{
		Start:        c.Prompts.Start,
		ReadSuccess:  c.Prompts.ReadSuccess,
		WriteSuccess: c.Prompts.WriteSuccess,
	}
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
