package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	valid := jwt.MapClaims{
		"sub":           "user-1",
		"email":         "alice@example.com",
		"aud":           "authenticated",
		"exp":           exp.Unix(),
		"user_metadata": map[string]any{"name": "Alice"},
	}

	t.Run("valid token", func(t *testing.T) {
		v := NewJWTVerifier(testSecret, "authenticated")
		id, err := v.Verify(ctx, signToken(t, testSecret, jwt.SigningMethodHS256, valid))
		require.NoError(t, err)
		assert.Equal(t, "user-1", id.UserID)
		assert.Equal(t, "alice@example.com", id.Email)
		assert.Equal(t, "Alice", id.Name)
		assert.Equal(t, exp.Unix(), id.ExpiresAt)
	})

	tests := []struct {
		name     string
		secret   string
		method   jwt.SigningMethod
		claims   jwt.MapClaims
		audience string
	}{
		{name: "wrong secret", secret: "other", method: jwt.SigningMethodHS256, claims: valid},
		{name: "wrong algorithm", secret: testSecret, method: jwt.SigningMethodHS512, claims: valid},
		{name: "expired", secret: testSecret, method: jwt.SigningMethodHS256, claims: jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}},
		{name: "missing exp", secret: testSecret, method: jwt.SigningMethodHS256, claims: jwt.MapClaims{"sub": "u"}},
		{name: "missing subject", secret: testSecret, method: jwt.SigningMethodHS256, claims: jwt.MapClaims{"exp": exp.Unix()}},
		{name: "wrong audience", secret: testSecret, method: jwt.SigningMethodHS256, claims: valid, audience: "service_role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTVerifier(testSecret, tt.audience)
			_, err := v.Verify(ctx, signToken(t, tt.secret, tt.method, tt.claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTVerifier(testSecret, "").Verify(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
