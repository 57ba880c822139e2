package engine

import (
	"context"
	"errors"
	"fmt"
	"net"

	"notechat/internal/errinfo"
	"notechat/internal/llm"
	"notechat/internal/vault"
)

// EmptyInputError means the note has nothing to send.
type EmptyInputError struct {
	Path string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("note %s has no content", e.Path)
}

func (e *EmptyInputError) Unwrap() error { return llm.ErrEmptyConversation }

// AppendError means the reply could not be written back to the note.
type AppendError struct {
	Path string
	Err  error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append reply to %s: %v", e.Path, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// ErrorInfo maps a Run or Parse error onto its user-facing description.
func ErrorInfo(err error) *errinfo.ErrorInfo {
	var info *errinfo.ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	var emptyErr *EmptyInputError
	if errors.As(err, &emptyErr) {
		return errinfo.EmptyInput(errinfo.PhaseParse)
	}
	var appendErr *AppendError
	if errors.As(err, &appendErr) {
		return errinfo.FileWriteFailed(errinfo.PhaseAppend, err.Error())
	}
	var cfgErr *llm.ConfigurationError
	if errors.As(err, &cfgErr) {
		if errors.Is(err, llm.ErrUnknownProvider) {
			info := errinfo.ValidationFailed(errinfo.PhaseDispatch, err.Error())
			info.ProviderID = cfgErr.Provider
			return info
		}
		return errinfo.ProviderNotConfigured(errinfo.PhaseDispatch, cfgErr.Provider, err.Error())
	}
	if errors.Is(err, vault.ErrSandboxViolation) || errors.Is(err, vault.ErrInvalidPath) {
		return errinfo.SandboxViolation(errinfo.PhaseRead, err.Error())
	}
	if errors.Is(err, vault.ErrNotFound) || errors.Is(err, vault.ErrNotDocument) {
		return errinfo.FileReadFailed(errinfo.PhaseRead, err.Error())
	}
	return mapLLMError(errinfo.PhaseDispatch, err)
}

func mapLLMError(phase string, err error) *errinfo.ErrorInfo {
	var providerID string
	var reqErr *llm.RequestError
	if errors.As(err, &reqErr) {
		providerID = reqErr.Provider
	}
	withProvider := func(info *errinfo.ErrorInfo) *errinfo.ErrorInfo {
		info.ProviderID = providerID
		return info
	}
	switch {
	case errors.Is(err, llm.ErrUnauthorized):
		return withProvider(errinfo.ProviderAuthFailed(phase))
	case errors.Is(err, llm.ErrEgressBlocked):
		return withProvider(errinfo.EgressBlocked(phase, "provider endpoint not allowed"))
	case errors.Is(err, llm.ErrRateLimited):
		return withProvider(errinfo.ProviderRateLimited(phase, err.Error()))
	case errors.Is(err, llm.ErrUnavailable):
		return withProvider(errinfo.ProviderUnavailable(phase, err.Error()))
	case errors.Is(err, context.Canceled):
		return withProvider(errinfo.UserCanceled(phase, err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		return withProvider(errinfo.NetworkUnavailable(phase, err.Error()))
	}
	if reqErr != nil {
		return withProvider(errinfo.RequestFailed(phase, reqErr.StatusCode, reqErr.Body))
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return withProvider(errinfo.NetworkUnavailable(phase, err.Error()))
	}
	return withProvider(errinfo.ValidationFailed(phase, err.Error()))
}
