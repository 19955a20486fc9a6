package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStore(t *testing.T) {
	timeout := FromStore(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if timeout.Code != "REQUEST_TIMEOUT" || timeout.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("unexpected timeout error %+v", timeout)
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("expected deadline to stay reachable through Unwrap")
	}

	internal := FromStore(errors.New("FOREIGN KEY constraint failed"))
	if internal.Code != "INTERNAL_ERROR" || internal.Message != "Internal server error" {
		t.Errorf("unexpected internal error %+v", internal)
	}
}

func TestWithMessageKeepsCode(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "Name is required")
	if err.Code != ErrInvalidInput.Code || err.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected error %+v", err)
	}
	if err.Error() != "Name is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("WithMessage must not mutate the sentinel")
	}
}
