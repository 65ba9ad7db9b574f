package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyPrefix and KeyVersion are the first two dash-separated fields of an API key.
const (
	KeyPrefix  = "rn"
	KeyVersion = "v1"
)

// ParseAPIKey extracts secret_id and random_data from API key format.
// Format: rn-v1-<secret_id>-<random_data>, secret_id 32 hex chars,
// random_data 64 hex chars.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0] != KeyPrefix || parts[1] != KeyVersion {
		return "", "", ErrInvalidKeyFormat
	}

	secretID, randomData = parts[2], parts[3]
	if len(secretID) != 32 || len(randomData) != 64 {
		return "", "", ErrInvalidKeyFormat
	}
	for _, c := range secretID + randomData {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", "", ErrInvalidKeyFormat
		}
	}

	return secretID, randomData, nil
}

// ComputeHMAC computes HMAC-SHA256 signature of API key using secret.
func ComputeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}

// VerifyHMAC compares two signatures in constant time.
func VerifyHMAC(expectedHash, computedHash []byte) bool {
	return hmac.Equal(expectedHash, computedHash)
}

// FormatAPIKey constructs API key from components.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s-%s-%s-%s", KeyPrefix, KeyVersion, secretID, randomData)
}

// GenerateAPIKey returns a new key signed by secretID with 256 random bits.
func GenerateAPIKey(secretID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	key := FormatAPIKey(secretID, hex.EncodeToString(buf))
	if _, _, err := ParseAPIKey(key); err != nil {
		return "", err
	}
	return key, nil
}
