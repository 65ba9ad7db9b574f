// Package config provides configuration management for the renamer service.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solatis/renamer/internal/pipeline"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "RENAMER"

// ServerConfig holds configuration for the gRPC rename service.
type ServerConfig struct {
	Host             string
	Port             int
	RequestTimeout   time.Duration
	MaxSnapshotSlots int
}

// RenamerConfig holds rule-engine settings.
type RenamerConfig struct {
	DefaultPack    string
	RenamePriority pipeline.Priority
	PacksFile      string
	SelectionTTL   time.Duration
}

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig
	Renamer RenamerConfig
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             50061,
			RequestTimeout:   10 * time.Second,
			MaxSnapshotSlots: 256,
		},
		Renamer: RenamerConfig{
			DefaultPack:    "default",
			RenamePriority: pipeline.PriorityNormal,
			SelectionTTL:   5 * time.Minute,
		},
	}
}

// Addr returns host:port for net.Listen.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports RENAMER_HMAC_SECRET (single) and RENAMER_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)
	single := EnvPrefix + "_HMAC_SECRET"

	add := func(name, val string) error {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' found in environment variables (check %s and %s_* for conflicts)", secretID, single, single)
		}
		secrets[secretID] = decoded
		return nil
	}

	if val := os.Getenv(single); val != "" {
		if err := add(single, val); err != nil {
			return nil, err
		}
	}

	// Numbered secrets keep old and new keys valid during rotation.
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", single, i)
		val := os.Getenv(name)
		if val == "" {
			break
		}
		if err := add(name, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
