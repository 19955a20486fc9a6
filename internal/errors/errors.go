// Package errors provides custom error types for the Tally API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"context"
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// FromStore hides a database error behind a tagged AppError. An expired
// request deadline becomes REQUEST_TIMEOUT, anything else INTERNAL_ERROR.
func FromStore(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(ErrRequestTimeout, err)
	}
	return Wrap(ErrInternalServer, err)
}

// Authentication errors.
var (
	ErrUnauthorized     = &AppError{Code: "UNAUTHORIZED", Message: "Missing or invalid authorization header", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken     = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrInvalidOTP       = &AppError{Code: "INVALID_OTP", Message: "Invalid or expired code", StatusCode: http.StatusUnauthorized}
	ErrOTPRequestFailed = &AppError{Code: "OTP_REQUEST_FAILED", Message: "Error requesting OTP, please try again later", StatusCode: http.StatusBadGateway}
	ErrInvalidAPIKey    = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrRateLimited      = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", StatusCode: http.StatusInternalServerError}
	ErrRequestTimeout = &AppError{Code: "REQUEST_TIMEOUT", Message: "Request timed out", StatusCode: http.StatusGatewayTimeout}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Expense errors.
var (
	ErrExpenseNotFound     = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrExpenseItemNotFound = &AppError{Code: "EXPENSE_ITEM_NOT_FOUND", Message: "Expense item not found", StatusCode: http.StatusNotFound}
	ErrFavoriteNotFound    = &AppError{Code: "FAVORITE_NOT_FOUND", Message: "Favorite not found", StatusCode: http.StatusNotFound}
)

// Billing period errors.
var (
	ErrBillingPeriodNotFound = &AppError{Code: "BILLING_PERIOD_NOT_FOUND", Message: "Billing period not found", StatusCode: http.StatusNotFound}
	ErrInvalidPeriodRange    = &AppError{Code: "INVALID_PERIOD_RANGE", Message: "end_date must be after start_date", StatusCode: http.StatusBadRequest}
)

// Recurring expense errors.
var (
	ErrRecurringExpenseNotFound = &AppError{Code: "RECURRING_EXPENSE_NOT_FOUND", Message: "Recurring expense not found", StatusCode: http.StatusNotFound}
)
