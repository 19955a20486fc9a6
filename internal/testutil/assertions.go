package testutil

import (
	"errors"
	"strings"
	"testing"

	apperrors "tally/internal/errors"
)

// AssertAppError checks that err is an *AppError carrying code and returns
// it. A wrapped store error must never show up in the client message.
func AssertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", code)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("expected error code %q, got %q (message: %s)", code, appErr.Code, appErr.Message)
	}
	if appErr.StatusCode == 0 {
		t.Errorf("AppError %q has no HTTP status", appErr.Code)
	}
	if appErr.Internal != nil && strings.Contains(appErr.Message, appErr.Internal.Error()) {
		t.Errorf("client message %q leaks internal error", appErr.Message)
	}
	return appErr
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
