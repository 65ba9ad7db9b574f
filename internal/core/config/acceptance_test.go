package config

import (
	"testing"
)

// TestAcceptanceCriteria verifies the operator-facing configuration contract.
func TestAcceptanceCriteria(t *testing.T) {
	t.Run("AC1: secret in environment does not trip the config-file check", func(t *testing.T) {
		t.Setenv("RENAMER_HMAC_SECRET", secretA)

		if _, err := LoadConfig(""); err != nil {
			t.Fatalf("AC1 FAIL: LoadConfig error: %v", err)
		}
		secrets, err := HMACSecrets()
		if err != nil || len(secrets) != 1 {
			t.Fatalf("AC1 FAIL: HMACSecrets = %d, %v", len(secrets), err)
		}
	})

	t.Run("AC2: config file with hmac_secret rejected with clear error", func(t *testing.T) {
		path := writeConfig(t, `server:
  host: "localhost"
  hmac_secret: "should_be_rejected"
`)
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("AC2 FAIL: expected error for secret in config file")
		}
		if err.Error() != "HMAC secrets not allowed in config files (use RENAMER_HMAC_SECRET environment variable)" {
			t.Fatalf("AC2 FAIL: wrong error message: %v", err)
		}
	})

	t.Run("AC3: environment overrides config file", func(t *testing.T) {
		t.Setenv("RENAMER_SERVER_PORT", "8080")
		path := writeConfig(t, `server:
  port: 9090
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("AC3 FAIL: LoadConfig error: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Fatalf("AC3 FAIL: expected port 8080, got %d", cfg.Server.Port)
		}
	})
}
