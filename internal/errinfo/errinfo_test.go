package errinfo

import (
	"strings"
	"testing"
)

func TestProviderNotConfigured(t *testing.T) {
	err := ProviderNotConfigured(PhaseDispatch, "gemini", "missing credential")
	if err.ErrorCode != CodeProviderNotConfigured {
		t.Fatalf("expected provider not configured")
	}
	if len(err.Actions) == 0 || err.Actions[0] != ActionSetKey {
		t.Fatalf("expected set_key action")
	}
	if !strings.Contains(err.Message(), "notechat keys set gemini") {
		t.Fatalf("expected message to name the command, got %q", err.Message())
	}
}

func TestRequestFailedMessage(t *testing.T) {
	info := RequestFailed(PhaseDispatch, 400, "bad model")
	info.ProviderID = "openai"
	if info.StatusCode != 400 {
		t.Fatalf("expected status code")
	}
	msg := info.Message()
	if !strings.Contains(msg, "400") || !strings.Contains(msg, "bad model") || !strings.Contains(msg, "openai") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestErrorString(t *testing.T) {
	if got := EmptyInput(PhaseParse).Error(); got != CodeEmptyInput {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := FileWriteFailed(PhaseAppend, "disk full").Error(); got != "FILE_WRITE_FAILED: disk full" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestMessageFallsBackToDetail(t *testing.T) {
	if got := SandboxViolation(PhaseRead, "path escapes vault").Message(); got != "path escapes vault" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := (&ErrorInfo{ErrorCode: "X"}).Message(); got != "X" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRetryableHelpers(t *testing.T) {
	if !ProviderUnavailable(PhaseDispatch, "503").Retryable {
		t.Fatalf("expected unavailable to be retryable")
	}
	if !ProviderRateLimited(PhaseDispatch, "429").Retryable {
		t.Fatalf("expected rate limited to be retryable")
	}
	if ProviderAuthFailed(PhaseDispatch).Retryable {
		t.Fatalf("auth failures are not retryable")
	}
}
