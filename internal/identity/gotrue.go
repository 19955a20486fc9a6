package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoTrueClient talks to a Supabase GoTrue auth server.
type GoTrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoTrueClient creates a client for the auth server at baseURL
// (the Supabase project URL) using the project's anon key.
func NewGoTrueClient(baseURL, apiKey string, timeout time.Duration) *GoTrueClient {
	return &GoTrueClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type goTrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Verify asks the auth server who owns the token.
func (c *GoTrueClient) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch user: status %d: %s", resp.StatusCode, string(body))
	}

	var user goTrueUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      metadataName(user.UserMetadata),
		ExpiresAt: tokenExpiry(token),
	}, nil
}

// tokenExpiry reads the exp claim without checking the signature. The auth
// server has already accepted the token; the value only bounds caching.
// It returns 0 when the token carries no readable exp.
func tokenExpiry(token string) int64 {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}

// SendOTP asks the auth server to email a one-time passcode.
func (c *GoTrueClient) SendOTP(ctx context.Context, email string, createUser bool) error {
	payload := map[string]any{"email": email, "create_user": createUser}
	resp, err := c.post(ctx, "/otp", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send otp: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// VerifyOTP exchanges an emailed passcode for a session.
func (c *GoTrueClient) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	payload := map[string]any{"type": "email", "email": email, "token": code}
	resp, err := c.post(ctx, "/verify", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, ErrInvalidOTP
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("verify otp: status %d: %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrInvalidOTP
	}
	return &session, nil
}

func (c *GoTrueClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return resp, nil
}
