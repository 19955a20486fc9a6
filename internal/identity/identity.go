// Package identity verifies bearer tokens against the external identity
// provider and proxies its email one-time-passcode login flow.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the provider rejects a token.
var ErrInvalidToken = errors.New("identity: invalid or expired token")

// ErrInvalidOTP is returned when the provider rejects a one-time passcode.
var ErrInvalidOTP = errors.New("identity: invalid or expired code")

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`

	// ExpiresAt is the token expiry in Unix seconds, or 0 when unknown.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// DisplayName returns the provider display name, falling back to the email.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Verifier verifies a bearer token and returns the identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Session is the token set returned by a successful OTP verification.
type Session struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	User         map[string]any `json:"user,omitempty"`
}

// OTPProvider starts and completes the email one-time-passcode login.
type OTPProvider interface {
	SendOTP(ctx context.Context, email string, createUser bool) error
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
}

func metadataName(meta map[string]any) string {
	for _, key := range []string{"name", "full_name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
