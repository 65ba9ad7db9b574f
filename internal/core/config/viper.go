package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/solatis/renamer/internal/pipeline"
)

// New returns a viper instance with defaults and environment binding set up.
// The CLI binds its flags onto the same instance before calling Load.
func New() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.max_snapshot_slots", d.Server.MaxSnapshotSlots)
	v.SetDefault("renamer.default_pack", d.Renamer.DefaultPack)
	v.SetDefault("renamer.rename_priority", d.Renamer.RenamePriority.String())
	v.SetDefault("renamer.packs_file", d.Renamer.PacksFile)
	v.SetDefault("renamer.selection_ttl", d.Renamer.SelectionTTL.String())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	return Load(New(), configPath)
}

// Load reads configPath (if any) into v and decodes the result.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	priority, err := pipeline.ParsePriority(v.GetString("renamer.rename_priority"))
	if err != nil {
		return nil, fmt.Errorf("renamer.rename_priority: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:             v.GetString("server.host"),
			Port:             v.GetInt("server.port"),
			RequestTimeout:   v.GetDuration("server.request_timeout"),
			MaxSnapshotSlots: v.GetInt("server.max_snapshot_slots"),
		},
		Renamer: RenamerConfig{
			DefaultPack:    v.GetString("renamer.default_pack"),
			RenamePriority: priority,
			PacksFile:      v.GetString("renamer.packs_file"),
			SelectionTTL:   v.GetDuration("renamer.selection_ttl"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig checks port range and positive limits.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.MaxSnapshotSlots <= 0 {
		return fmt.Errorf("max_snapshot_slots must be positive, got %d", cfg.Server.MaxSnapshotSlots)
	}
	if strings.TrimSpace(cfg.Renamer.DefaultPack) == "" {
		return fmt.Errorf("default_pack must not be empty")
	}
	if cfg.Renamer.RenamePriority == pipeline.PriorityMonitor {
		return fmt.Errorf("rename_priority cannot be %s", pipeline.PriorityMonitor)
	}
	if cfg.Renamer.SelectionTTL <= 0 {
		return fmt.Errorf("selection_ttl must be positive, got %v", cfg.Renamer.SelectionTTL)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("server.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use %s_HMAC_SECRET environment variable)", EnvPrefix)
	}
	return nil
}
