package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"notechat/internal/errinfo"
	"notechat/internal/llm"
)

func TestErrorInfoMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"empty", &EmptyInputError{Path: "a.md"}, errinfo.CodeEmptyInput},
		{"append", &AppendError{Path: "a.md", Err: errors.New("ro")}, errinfo.CodeFileWriteFailed},
		{"missing key", &llm.ConfigurationError{Provider: "openai", Err: llm.ErrMissingCredential}, errinfo.CodeProviderNotConfigured},
		{"unknown provider", &llm.ConfigurationError{Provider: "x", Err: llm.ErrUnknownProvider}, errinfo.CodeValidationFailed},
		{"unauthorized", &llm.RequestError{Provider: "openai", StatusCode: 401}, errinfo.CodeProviderAuthFailed},
		{"rate limited", &llm.RequestError{Provider: "openai", StatusCode: 429}, errinfo.CodeProviderRateLimited},
		{"bad request", &llm.RequestError{Provider: "gemini", StatusCode: 400, Body: "bad"}, errinfo.CodeRequestFailed},
		{"egress", fmt.Errorf("post: %w", llm.ErrEgressBlocked), errinfo.CodeEgressBlocked},
		{"canceled", context.Canceled, errinfo.CodeUserCanceled},
		{"deadline", context.DeadlineExceeded, errinfo.CodeNetworkUnavailable},
		{"net", fakeNetErr{}, errinfo.CodeNetworkUnavailable},
		{"other", errors.New("weird"), errinfo.CodeValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ErrorInfo(tc.err).ErrorCode)
		})
	}
}

func TestErrorInfoCarriesRequestDetails(t *testing.T) {
	info := ErrorInfo(&llm.RequestError{Provider: "gemini", StatusCode: 400, Body: "bad model"})
	assert.Equal(t, "gemini", info.ProviderID)
	assert.Equal(t, 400, info.StatusCode)
	assert.Equal(t, "bad model", info.Detail)
}

func TestErrorInfoPassesThroughErrorInfo(t *testing.T) {
	original := errinfo.UserCanceled(errinfo.PhaseDispatch, "stop")
	assert.Same(t, original, ErrorInfo(fmt.Errorf("wrapped: %w", original)))
}
