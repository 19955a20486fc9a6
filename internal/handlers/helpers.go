package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "tally/internal/errors"
	"tally/internal/events"
	"tally/internal/logger"
	"tally/internal/middleware"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a non-empty path parameter.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError turns a binding failure into a client-facing validation error.
// Missing required fields are reported together, e.g. "Name and amount are required".
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, requiredMessage(missing))
	}

	return apperrors.WithMessage(apperrors.ErrInvalidInput, fieldMessage(verrs[0]))
}

func requiredMessage(fields []string) string {
	var list string
	switch len(fields) {
	case 1:
		return capitalize(fields[0]) + " is required"
	case 2:
		list = fields[0] + " and " + fields[1]
	default:
		list = strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
	return capitalize(list) + " are required"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", field)
	case "expense_status":
		return fmt.Sprintf("%s must be one of pending, paid, overdue, cancelled", field)
	case "recurrence_type":
		return fmt.Sprintf("%s must be one of weekly, bi-weekly, monthly, quarterly, yearly", field)
	case "day_of_month":
		return fmt.Sprintf("%s must be between 1 and 31", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// publish hands an event to the broker. Failures are logged and never fail
// the request that caused them.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish event",
			"error", err,
			"type", event.Type,
			"expense_id", event.ExpenseID,
			"request_id", logger.RequestID(ctx),
		)
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error" example:"Expense not found"`
	Code  string `json:"code" example:"EXPENSE_NOT_FOUND"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
