package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	t.Run("keeps_sentinel_fields_and_cause", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := Wrap(ErrImportFailed, cause)

		if err.Code != "IMPORT_FAILED" {
			t.Errorf("expected IMPORT_FAILED, got %s", err.Code)
		}
		if err.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", err.StatusCode)
		}
		if !stderrors.Is(err, cause) {
			t.Error("expected wrapped error to unwrap to its cause")
		}
		if ErrImportFailed.Internal != nil {
			t.Error("sentinel must not be mutated")
		}
	})
}

func TestWithMessage(t *testing.T) {
	t.Run("overrides_message_only", func(t *testing.T) {
		err := WithMessage(ErrCurrencyNotFound, "currency XYZ not found")
		if err.Message != "currency XYZ not found" {
			t.Errorf("unexpected message %q", err.Message)
		}
		if err.Code != ErrCurrencyNotFound.Code || err.StatusCode != http.StatusNotFound {
			t.Errorf("unexpected code/status %s/%d", err.Code, err.StatusCode)
		}
	})

	t.Run("errors_as_finds_app_error", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", WithMessage(ErrInvalidInput, "bad"))
		var appErr *AppError
		if !stderrors.As(wrapped, &appErr) {
			t.Fatal("expected errors.As to find *AppError")
		}
		if appErr.Code != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
		}
	})
}
