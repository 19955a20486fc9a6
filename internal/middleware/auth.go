package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/identity"
	"tally/internal/logger"
	"tally/internal/models"
)

// Context keys set by Auth.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextName   = "name"
)

const bearerPrefix = "Bearer "

// Auth verifies the bearer token with the identity provider and sets the
// caller's id, email and display name in the context.
func Auth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if token == "" {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, identity.ErrInvalidToken) {
				// Provider unreachable or misbehaving. The caller still gets a 401.
				logger.Get().Warnw("token verification failed",
					"error", err,
					"path", c.Request.URL.Path,
					"request_id", logger.RequestID(c.Request.Context()),
				)
			}
			_ = c.Error(apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextEmail, id.Email)
		c.Set(ContextName, id.DisplayName())
		c.Next()
	}
}

// UserProvisioner creates the caller's user row if it does not exist yet.
type UserProvisioner interface {
	CreateOrDontUser(ctx context.Context, userID, name, email string) (bool, error)
	GetUserByID(ctx context.Context, userID string) ([]models.User, error)
}

// ProvisionUser makes sure every authenticated caller has a user row before
// any handler writes rows that reference it. It must run after Auth.
// Each user id is provisioned once per process.
func ProvisionUser(users UserProvisioner) gin.HandlerFunc {
	var seen sync.Map

	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := seen.Load(userID); ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := c.GetString(ContextEmail)
		if email != "" {
			name := c.GetString(ContextName)
			created, err := users.CreateOrDontUser(ctx, userID, name, email)
			if err == nil && !created && name != email {
				// Display names are unique; fall back to the email on a clash.
				created, err = users.CreateOrDontUser(ctx, userID, email, email)
			}
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if created {
				logger.Get().Infow("provisioned user", "user_id", userID)
				seen.Store(userID, struct{}{})
				c.Next()
				return
			}
		}

		// Nothing was written: the row must already be there.
		existing, err := users.GetUserByID(ctx, userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if len(existing) == 0 {
			logger.Get().Errorw("user could not be provisioned",
				"user_id", userID,
				"has_email", email != "",
				"request_id", logger.RequestID(ctx),
			)
			_ = c.Error(apperrors.ErrInternalServer)
			c.Abort()
			return
		}
		seen.Store(userID, struct{}{})
		c.Next()
	}
}
