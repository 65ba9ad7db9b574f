package config

import (
	"os"
	"testing"
	"time"

	"github.com/solatis/renamer/internal/pipeline"
)

const (
	secretA = "0123456789abcdef0123456789abcdef:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	secretB = "fedcba9876543210fedcba9876543210:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	secretC = "0123456789abcdef0123456789abcdef:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
)

func TestHMACSecrets(t *testing.T) {
	t.Run("single secret", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET", secretA)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 1 {
			t.Errorf("expected 1 secret, got %d", len(secrets))
		}
		if _, ok := secrets["0123456789abcdef0123456789abcdef"]; !ok {
			t.Errorf("secret_id not found in map")
		}
	})

	t.Run("multiple numbered secrets", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET_1", secretA)
		t.Setenv("RENAMER_HMAC_SECRET_2", secretB)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 2 {
			t.Errorf("expected 2 secrets, got %d", len(secrets))
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET", "invalid_format")
		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for invalid format")
		}
	})

	t.Run("non-hex secret_id", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET", "0123456789abcdefGHIJKLMNOPQRSTUV:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w")
		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for non-hex secret_id")
		}
	})

	t.Run("duplicate secret_id between single and numbered", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET", secretA)
		t.Setenv("RENAMER_HMAC_SECRET_1", secretC)
		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for duplicate secret_id")
		}
	})
}

func TestParseHMACSecretWithID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", secretA, false},
		{"short id", "short:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w", true},
		{"bad base64", "0123456789abcdef0123456789abcdef:not-valid-base64!!!", true},
		{"short secret", "0123456789abcdef0123456789abcdef:c2hvcnQ=", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseHMACSecretWithID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseHMACSecretWithID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return f.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("Host = %s, want 0.0.0.0", cfg.Server.Host)
		}
		if cfg.Server.Port != 50061 {
			t.Errorf("Port = %d, want 50061", cfg.Server.Port)
		}
		if cfg.Server.RequestTimeout != 10*time.Second {
			t.Errorf("RequestTimeout = %v, want 10s", cfg.Server.RequestTimeout)
		}
		if cfg.Server.MaxSnapshotSlots != 256 {
			t.Errorf("MaxSnapshotSlots = %d, want 256", cfg.Server.MaxSnapshotSlots)
		}
		if cfg.Renamer.DefaultPack != "default" {
			t.Errorf("DefaultPack = %q, want default", cfg.Renamer.DefaultPack)
		}
		if cfg.Renamer.RenamePriority != pipeline.PriorityNormal {
			t.Errorf("RenamePriority = %v, want normal", cfg.Renamer.RenamePriority)
		}
		if cfg.Renamer.SelectionTTL != 5*time.Minute {
			t.Errorf("SelectionTTL = %v, want 5m", cfg.Renamer.SelectionTTL)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("RENAMER_SERVER_PORT", "9999")
		t.Setenv("RENAMER_RENAMER_RENAME_PRIORITY", "high")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Port != 9999 {
			t.Errorf("Port = %d, want 9999", cfg.Server.Port)
		}
		if cfg.Renamer.RenamePriority != pipeline.PriorityHigh {
			t.Errorf("RenamePriority = %v, want high", cfg.Renamer.RenamePriority)
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := writeConfig(t, `renamer:
  default_pack: "survival"
  packs_file: "/etc/renamer/packs.yaml"
server:
  max_snapshot_slots: 54
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Renamer.DefaultPack != "survival" {
			t.Errorf("DefaultPack = %q, want survival", cfg.Renamer.DefaultPack)
		}
		if cfg.Renamer.PacksFile != "/etc/renamer/packs.yaml" {
			t.Errorf("PacksFile = %q", cfg.Renamer.PacksFile)
		}
		if cfg.Server.MaxSnapshotSlots != 54 {
			t.Errorf("MaxSnapshotSlots = %d, want 54", cfg.Server.MaxSnapshotSlots)
		}
	})

	invalid := []struct {
		name, key, value string
	}{
		{"port out of range", "RENAMER_SERVER_PORT", "70000"},
		{"non-positive slots", "RENAMER_SERVER_MAX_SNAPSHOT_SLOTS", "0"},
		{"unknown priority", "RENAMER_RENAMER_RENAME_PRIORITY", "urgent"},
		{"monitor priority", "RENAMER_RENAMER_RENAME_PRIORITY", "monitor"},
		{"negative ttl", "RENAMER_RENAMER_SELECTION_TTL", "-1s"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
