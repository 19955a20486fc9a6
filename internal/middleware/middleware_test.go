package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/identity"
	"tally/internal/logger"
	"tally/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func assertErrorBody(t *testing.T, rec *httptest.ResponseRecorder, wantCode, wantMessage string) {
	t.Helper()
	body := parseBody(t, rec)
	if code, _ := body["code"].(string); code != wantCode {
		t.Errorf("code = %q, want %q", code, wantCode)
	}
	if wantMessage != "" {
		if msg, _ := body["error"].(string); msg != wantMessage {
			t.Errorf("error = %q, want %q", msg, wantMessage)
		}
	}
}

type fakeVerifier struct {
	identities map[string]*identity.Identity
	err        error
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.identities[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return id, nil
}

func setupAuthRouter(v identity.Verifier, reached *bool) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(Auth(v))
	r.GET("/test", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"email":   c.GetString(ContextEmail),
			"name":    c.GetString(ContextName),
		})
	})
	return r
}

func TestAuth(t *testing.T) {
	verifier := &fakeVerifier{identities: map[string]*identity.Identity{
		"good-token": {UserID: "user-1", Email: "alice@example.com", Name: "Alice"},
	}}

	tests := []struct {
		name        string
		verifier    identity.Verifier
		header      string
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing_header",
			verifier:    verifier,
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "UNAUTHORIZED",
			wantMessage: "Missing or invalid authorization header",
		},
		{
			name:        "basic_scheme",
			verifier:    verifier,
			header:      "Basic dXNlcjpwYXNz",
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "UNAUTHORIZED",
			wantMessage: "Missing or invalid authorization header",
		},
		{
			name:       "lowercase_bearer",
			verifier:   verifier,
			header:     "bearer good-token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "empty_token",
			verifier:   verifier,
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:        "rejected_token",
			verifier:    verifier,
			header:      "Bearer bad-token",
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "INVALID_TOKEN",
			wantMessage: "Invalid or expired token",
		},
		{
			name:        "provider_unreachable",
			verifier:    &fakeVerifier{err: errors.New("dial tcp: connection refused")},
			header:      "Bearer good-token",
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "INVALID_TOKEN",
			wantMessage: "Invalid or expired token",
		},
		{
			name:       "valid_token",
			verifier:   verifier,
			header:     "Bearer good-token",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			router := setupAuthRouter(tt.verifier, &reached)

			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus != http.StatusOK {
				if reached {
					t.Error("handler must not run for unauthenticated requests")
				}
				assertErrorBody(t, rec, tt.wantCode, tt.wantMessage)
				return
			}

			body := parseBody(t, rec)
			if body["user_id"] != "user-1" || body["email"] != "alice@example.com" || body["name"] != "Alice" {
				t.Errorf("unexpected identity in context: %v", body)
			}
		})
	}
}

type fakeProvisioner struct {
	calls    []string
	existing map[string]bool
	err      error
}

func (f *fakeProvisioner) CreateOrDontUser(_ context.Context, userID, name, email string) (bool, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return false, f.err
	}
	if f.existing[name] || f.existing[userID] {
		return false, nil
	}
	f.existing[userID] = true
	return true, nil
}

func (f *fakeProvisioner) GetUserByID(_ context.Context, userID string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.existing[userID] {
		return []models.User{{Base: models.Base{ID: userID}}}, nil
	}
	return []models.User{}, nil
}

func setupProvisionRouter(p UserProvisioner, userID, email, name string) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, email)
		c.Set(ContextName, name)
		c.Next()
	})
	r.Use(ProvisionUser(p))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestProvisionUser(t *testing.T) {
	t.Run("provisions_once", func(t *testing.T) {
		p := &fakeProvisioner{existing: map[string]bool{}}
		router := setupProvisionRouter(p, "user-1", "alice@example.com", "Alice")

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
		}

		if len(p.calls) != 1 || p.calls[0] != "Alice" {
			t.Errorf("expected a single provisioning call with name Alice, got %v", p.calls)
		}
	})

	t.Run("name_clash_falls_back_to_email", func(t *testing.T) {
		p := &fakeProvisioner{existing: map[string]bool{"Alice": true}}
		router := setupProvisionRouter(p, "user-2", "alice2@example.com", "Alice")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		if len(p.calls) != 2 || p.calls[1] != "alice2@example.com" {
			t.Errorf("expected fallback to email, got %v", p.calls)
		}
	})

	t.Run("existing_row_passes", func(t *testing.T) {
		p := &fakeProvisioner{existing: map[string]bool{"user-4": true}}
		router := setupProvisionRouter(p, "user-4", "d@example.com", "D")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing_email_without_row", func(t *testing.T) {
		p := &fakeProvisioner{existing: map[string]bool{}}
		router := setupProvisionRouter(p, "user-5", "", "")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if len(p.calls) != 0 {
			t.Errorf("expected no insert without an email, got %v", p.calls)
		}
		assertErrorBody(t, rec, "INTERNAL_ERROR", "Internal server error")
	})

	t.Run("name_and_email_both_taken", func(t *testing.T) {
		p := &fakeProvisioner{existing: map[string]bool{"Erin": true, "erin@example.com": true}}
		router := setupProvisionRouter(p, "user-6", "erin@example.com", "Erin")

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("attempt %d: status = %d, want 500", i, rec.Code)
			}
		}

		// A failed attempt is not remembered, so the second request retried.
		if len(p.calls) != 4 {
			t.Errorf("expected two attempts per request, got %v", p.calls)
		}
	})

	t.Run("store_failure", func(t *testing.T) {
		p := &fakeProvisioner{err: apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down"))}
		router := setupProvisionRouter(p, "user-3", "c@example.com", "C")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		assertErrorBody(t, rec, "INTERNAL_ERROR", "Internal server error")
	})
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "app_error",
			err:        apperrors.ErrExpenseNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "EXPENSE_NOT_FOUND",
			wantMsg:    "Expense not found",
		},
		{
			name:       "wrapped_internal_hidden",
			err:        apperrors.Wrap(apperrors.ErrInternalServer, errors.New("SQLSTATE 23503")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "Internal server error",
		},
		{
			name:       "plain_error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/test", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			assertErrorBody(t, rec, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
	}{
		{name: "valid_api_key", configuredKey: "secret-metrics-key", requestKey: "secret-metrics-key", wantStatus: http.StatusOK},
		{name: "invalid_api_key", configuredKey: "secret-metrics-key", requestKey: "wrong-key", wantStatus: http.StatusUnauthorized},
		{name: "missing_api_key", configuredKey: "secret-metrics-key", wantStatus: http.StatusUnauthorized},
		{name: "partial_match_rejected", configuredKey: "secret-metrics-key", requestKey: "secret-metrics", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured_is_open", configuredKey: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(APIKeyAuth(tt.configuredKey))
			r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			if tt.requestKey != "" {
				req.Header.Set("X-API-Key", tt.requestKey)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assertErrorBody(t, rec, "INVALID_API_KEY", "")
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("expected third request to be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("expected a different client to have its own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("expected a token to refill after one second")
	}

	now = now.Add(limiterIdleTTL + 2*time.Minute)
	rl.Allow("3.3.3.3")
	if _, ok := rl.visitors["1.1.1.1"]; ok {
		t.Error("expected idle visitor to be evicted")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(NewRateLimiter(1, 1).Middleware())
	r.POST("/otp", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/otp", http.NoBody))
	if first.Code != http.StatusAccepted {
		t.Fatalf("first status = %d, want 202", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/otp", http.NoBody))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	assertErrorBody(t, second, "RATE_LIMITED", "")
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	t.Run("propagates_incoming_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
			t.Errorf("X-Request-ID = %q, want req-123", got)
		}
		if rec.Body.String() != "req-123" {
			t.Errorf("expected request id in context, got %q", rec.Body.String())
		}
	})

	t.Run("generates_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		got := rec.Header().Get("X-Request-ID")
		if len(got) != 36 {
			t.Errorf("expected generated uuid, got %q", got)
		}
		if rec.Body.String() != got {
			t.Errorf("context id %q does not match header %q", rec.Body.String(), got)
		}
	})
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/test", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		if time.Until(deadline) > 50*time.Millisecond {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Errorf("expected request context to carry the deadline, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", http.NoBody)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("allow origin = %q", got)
		}
	})

	t.Run("unknown_origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow origin, got %q", got)
		}
	})
}
