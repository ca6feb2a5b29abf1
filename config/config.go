package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds everything the gateway process needs at startup.
type Config struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	AdminAddr    string `mapstructure:"admin_addr"`
	Domain       string `mapstructure:"domain"`
	BackendURL   string `mapstructure:"backend_url"`
	BackendToken string `mapstructure:"backend_token"`
	ServerName   string `mapstructure:"server_name"`
	Environment  string `mapstructure:"environment"`
	Debug        bool   `mapstructure:"debug"`
}

// Loader reads and watches the configuration.
type Loader struct {
	v   *viper.Viper
	log *zap.Logger
}

// NewLoader creates a loader with the gateway defaults applied.
func NewLoader(log *zap.Logger) *Loader {
	v := viper.New()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5222)
	v.SetDefault("admin_addr", ":8080")
	v.SetDefault("domain", "hermes.solarisfn.org")
	v.SetDefault("backend_url", "http://localhost:3551")
	v.SetDefault("backend_token", "")
	v.SetDefault("server_name", "HermesServer")
	v.SetDefault("environment", "Development")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("HERMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log}
}

// Load reads the config file at path (or "config.{yaml,json}" in the
// working directory when path is empty) and returns the merged result.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("config")
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			l.log.Info("no config file found, using defaults")
		} else {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	} else {
		l.log.Info("loaded configuration", zap.String("file", l.v.ConfigFileUsed()))
	}

	return l.unmarshal()
}

// Watch re-reads the configuration whenever the underlying file changes and
// invokes fn with the fresh result. Malformed edits are logged and skipped.
func (l *Loader) Watch(fn func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.log.Info("configuration changed",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()))
		cfg, err := l.unmarshal()
		if err != nil {
			l.log.Error("reload failed", zap.Error(err))
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
