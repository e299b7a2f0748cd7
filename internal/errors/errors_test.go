package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeOCRFailed, "recognize failed")
	if got := err.Error(); got != "[OCR_FAILED] recognize failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "service unreachable")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should satisfy errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should include cause: %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	err := New(CodeRateLimited, "slow down")
	if CodeOf(err) != CodeRateLimited {
		t.Errorf("CodeOf = %v, want RATE_LIMITED", CodeOf(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeRateLimited {
		t.Error("CodeOf should see through fmt.Errorf wrapping")
	}

	if CodeOf(stderrors.New("plain")) != CodeUnknown {
		t.Error("plain errors map to UNKNOWN")
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeRegionInvalid, "too small")
	if !IsCode(err, CodeRegionInvalid) {
		t.Error("IsCode should match")
	}
	if IsCode(err, CodeOCRFailed) {
		t.Error("IsCode should not match a different code")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []Code{CodeUnavailable, CodeTimeout, CodeRateLimited}
	for _, c := range retryable {
		if !IsRetryable(New(c, "x")) {
			t.Errorf("%s should be retryable", c)
		}
	}

	terminal := []Code{CodeTranslateFailed, CodeRegionInvalid, CodeConfigMissing, CodeUnknown}
	for _, c := range terminal {
		if IsRetryable(New(c, "x")) {
			t.Errorf("%s should not be retryable", c)
		}
	}

	if IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(CodeTranslateFailed, "bad request").WithMetadata("status", "400")
	if err.Metadata["status"] != "400" {
		t.Errorf("metadata = %v", err.Metadata)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("Error() should include metadata: %q", err.Error())
	}
}
