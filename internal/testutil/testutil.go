// Package testutil holds shared fixtures for store-backed and HTTP tests.
package testutil

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var Schema string

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// CreateProfile inserts a bare profile with a random clerk id and removes it
// (and everything cascading from it) when the test ends.
func CreateProfile(t *testing.T, pool *pgxpool.Pool) (uuid.UUID, string) {
	t.Helper()

	id := uuid.New()
	clerkID := "user_test_" + id.String()[:8]
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO profiles (id, clerk_id, timezone) VALUES ($1, $2, 'UTC')`, id, clerkID)
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	t.Cleanup(func() {
		if _, err := pool.Exec(context.Background(), `DELETE FROM profiles WHERE id = $1`, id); err != nil {
			t.Logf("Warning: failed to cleanup profile: %v", err)
		}
	})
	return id, clerkID
}

var mockJWTKey = []byte("test-secret-key-for-testing-only")

// GenerateMockClerkJWT signs a Clerk-shaped token with a test key, valid for
// ttl from now. A negative ttl yields an expired token.
func GenerateMockClerkJWT(clerkID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(mockJWTKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyMockClerkJWT stands in for Clerk verification in tests and returns
// the token subject.
func VerifyMockClerkJWT(_ context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return mockJWTKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}
