package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantErr   bool
	}{
		{"json info", "info", "json", logrus.InfoLevel, false},
		{"text debug", "debug", "text", logrus.DebugLevel, false},
		{"bad level", "loud", "json", 0, true},
		{"bad format", "info", "xml", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logrus.New()
			err := setupLogger(log, tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setupLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && log.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestPickSecret(t *testing.T) {
	a := strings.Repeat("a", 32)
	b := strings.Repeat("b", 32)

	id, _, err := pickSecret(map[string][]byte{a: []byte("x")}, "")
	if err != nil || id != a {
		t.Fatalf("single secret: got %q, %v", id, err)
	}

	two := map[string][]byte{a: []byte("x"), b: []byte("y")}
	if _, _, err := pickSecret(two, ""); err == nil {
		t.Error("expected error choosing between two secrets")
	}
	if id, _, err := pickSecret(two, b); err != nil || id != b {
		t.Errorf("explicit id: got %q, %v", id, err)
	}
	if _, _, err := pickSecret(two, "missing"); err == nil {
		t.Error("expected error for unknown secret id")
	}
	if _, _, err := pickSecret(nil, ""); err == nil {
		t.Error("expected error with no secrets")
	}
}

func TestVersionCommandOutput(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Errorf("output %q does not contain version %s", out.String(), Version)
	}
}
