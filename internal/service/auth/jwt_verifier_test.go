package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow-api/internal/config"
)

const testSecret = "test-secret-key-that-is-32-chars!"

func newTestVerifier(t *testing.T, now time.Time) *hmacTokenVerifier {
	t.Helper()
	v, err := NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	impl := v.(*hmacTokenVerifier)
	impl.timeFunc = func() time.Time { return now }
	return impl
}

// signTestToken issues a token the way the external identity service does.
func signTestToken(t *testing.T, secret string, claims jwtCustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewTokenVerifier(t *testing.T) {
	_, err := NewTokenVerifier(config.AuthConfig{JWTSecret: "too short"})
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestVerify(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	freshClaims := func() jwtCustomClaims {
		return jwtCustomClaims{
			UserID: userID,
			Email:  "user@example.com",
			Role:   "member",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				ID:        uuid.New().String(),
			},
		}
	}

	t.Run("valid token", func(t *testing.T) {
		verifier := newTestVerifier(t, now)
		tokenString := signTestToken(t, testSecret, freshClaims())

		identity, err := verifier.Verify(context.Background(), tokenString)
		require.NoError(t, err)
		assert.Equal(t, userID, identity.UserID)
		assert.Equal(t, "user@example.com", identity.Email)
		assert.Equal(t, "member", identity.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		verifier := newTestVerifier(t, now)
		tokenString := signTestToken(t, "another-secret-key-32-characters!", freshClaims())

		_, err := verifier.Verify(context.Background(), tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := freshClaims()
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
		claims.IssuedAt = jwt.NewNumericDate(now.Add(-2 * time.Hour))
		tokenString := signTestToken(t, testSecret, claims)

		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), tokenString)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token within clock skew is accepted", func(t *testing.T) {
		claims := freshClaims()
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
		tokenString := signTestToken(t, testSecret, claims)

		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), tokenString)
		assert.NoError(t, err)
	})

	t.Run("not yet valid token", func(t *testing.T) {
		claims := freshClaims()
		claims.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))
		tokenString := signTestToken(t, testSecret, claims)

		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), tokenString)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("missing user ID claim", func(t *testing.T) {
		claims := freshClaims()
		claims.UserID = uuid.Nil
		tokenString := signTestToken(t, testSecret, claims)

		verifier := newTestVerifier(t, now)
		_, err := verifier.Verify(context.Background(), tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
