package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGoTrue(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		auth := r.Header.Get("Authorization")
		switch {
		case auth == "Bearer good", strings.HasPrefix(auth, "Bearer eyJ"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":            "user-1",
				"email":         "alice@example.com",
				"user_metadata": map[string]any{"full_name": "Alice"},
			})
		case auth == "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("/auth/v1/otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "down@example.com" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if body["create_user"] != false {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/auth/v1/verify", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["type"] != "email" || body["token"] != "123456" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"expires_in":    3600,
			"user":          map[string]any{"id": "user-1"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoTrueClient_Verify(t *testing.T) {
	srv := newFakeGoTrue(t)
	client := NewGoTrueClient(srv.URL+"/", "anon", time.Second)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		id, err := client.Verify(ctx, "good")
		require.NoError(t, err)
		assert.Equal(t, "user-1", id.UserID)
		assert.Equal(t, "alice@example.com", id.Email)
		assert.Equal(t, "Alice", id.Name)
	})

	t.Run("expiry is read from the token", func(t *testing.T) {
		exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("someone-elses-secret"))
		require.NoError(t, err)

		id, err := client.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, exp.Unix(), id.ExpiresAt)
	})

	t.Run("opaque token has no expiry", func(t *testing.T) {
		id, err := client.Verify(ctx, "good")
		require.NoError(t, err)
		assert.Zero(t, id.ExpiresAt)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := client.Verify(ctx, "bad")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := client.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("provider failure is not an invalid token", func(t *testing.T) {
		_, err := client.Verify(ctx, "broken")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("unreachable provider", func(t *testing.T) {
		down := NewGoTrueClient("http://127.0.0.1:1", "anon", 100*time.Millisecond)
		_, err := down.Verify(ctx, "good")
		assert.Error(t, err)
	})
}

func TestGoTrueClient_OTP(t *testing.T) {
	srv := newFakeGoTrue(t)
	client := NewGoTrueClient(srv.URL, "anon", time.Second)
	ctx := context.Background()

	require.NoError(t, client.SendOTP(ctx, "alice@example.com", false))
	assert.Error(t, client.SendOTP(ctx, "down@example.com", false))

	session, err := client.VerifyOTP(ctx, "alice@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, 3600, session.ExpiresIn)

	_, err = client.VerifyOTP(ctx, "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}
