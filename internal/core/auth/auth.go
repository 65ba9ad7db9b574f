// Package auth provides HMAC-based API key authentication for gRPC services.
//
// Every key is bound to one rule pack. Requests that don't name a pack
// process against the pack of the key that authenticated them.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// principalKey is the context key for the authenticated principal.
const principalKey = contextKey("principal")

// healthPrefix is the method prefix of the gRPC health service, which is
// served without authentication.
const healthPrefix = "/grpc.health.v1.Health/"

// Principal is an authenticated API key.
type Principal struct {
	APIKeyID string
	Pack     string
}

// Queries interface defines database operations needed for authentication.
// Implemented by *db.Queries.
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	log     logrus.FieldLogger
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries, log logrus.FieldLogger) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		log:     log.WithField("component", "auth"),
	}
}

// Authenticate validates an API key and returns its principal.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (Principal, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return Principal{}, err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return Principal{}, ErrUnknownKey
	}

	var row struct {
		APIKeyID   string       `db:"api_key_id"`
		Pack       string       `db:"pack_name"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}
	err = a.queries.Get("get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return Principal{}, ErrInvalidKey
	}
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if row.RevokedAt.Valid {
		return Principal{}, ErrKeyRevoked
	}

	// Throttled to one write per minute per key.
	if shouldUpdateLastUsed(row.LastUsedAt) {
		if _, err := a.queries.Exec("update-last-used", time.Now().UTC(), row.APIKeyID); err != nil {
			a.log.WithError(err).WithField("api_key_id", row.APIKeyID).Warn("failed to update last_used_at")
		}
	}

	return Principal{APIKeyID: row.APIKeyID, Pack: row.Pack}, nil
}

// shouldUpdateLastUsed implements 1-minute throttle to reduce write amplification.
func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		apiKeys := md.Get("x-api-key")
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		principal, err := a.Authenticate(ctx, apiKeys[0])
		if err != nil {
			switch {
			case errors.Is(err, ErrKeyRevoked):
				return nil, status.Error(codes.PermissionDenied, err.Error())
			case errors.Is(err, ErrDatabase):
				return nil, status.Error(codes.Unavailable, err.Error())
			default:
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
		}

		return handler(WithPrincipal(ctx, principal), req)
	}
}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// PackFromContext returns the pack bound to the authenticated key, or "".
func PackFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Pack
}

// IssueKey creates and stores a new API key bound to pack. The plaintext key
// is returned once; only its HMAC is stored.
func IssueKey(queries Queries, secretID string, secret []byte, pack, name string) (apiKey, apiKeyID string, err error) {
	apiKey, err = GenerateAPIKey(secretID)
	if err != nil {
		return "", "", err
	}
	apiKeyID = uuid.Must(uuid.NewV7()).String()
	if _, err := queries.Exec("insert-api-key", apiKeyID, ComputeHMAC(secret, apiKey), pack, name, time.Now().UTC()); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return apiKey, apiKeyID, nil
}

// RevokeKey marks a key revoked. Reports whether an active key was revoked.
func RevokeKey(queries Queries, apiKeyID string) (bool, error) {
	res, err := queries.Exec("revoke-api-key", time.Now().UTC(), apiKeyID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return n > 0, nil
}
