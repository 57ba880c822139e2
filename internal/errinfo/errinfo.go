package errinfo

import "fmt"

// ErrorInfo is the structured, user-facing description of a failed run.
type ErrorInfo struct {
	ErrorCode  string   `json:"error_code"`
	Phase      string   `json:"phase,omitempty"`
	Retryable  bool     `json:"retryable"`
	Actions    []string `json:"actions,omitempty"`
	ProviderID string   `json:"provider_id,omitempty"`
	ModelID    string   `json:"model_id,omitempty"`
	StatusCode int      `json:"status_code,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

const (
	CodeEmptyInput            = "EMPTY_INPUT"
	CodeEgressBlocked         = "EGRESS_BLOCKED_BY_POLICY"
	CodeProviderNotConfigured = "PROVIDER_NOT_CONFIGURED"
	CodeProviderAuthFailed    = "PROVIDER_AUTH_FAILED"
	CodeProviderUnavailable   = "PROVIDER_UNAVAILABLE"
	CodeProviderRateLimited   = "PROVIDER_RATE_LIMITED"
	CodeRequestFailed         = "REQUEST_FAILED"
	CodeNetworkUnavailable    = "NETWORK_UNAVAILABLE"
	CodeSandboxViolation      = "SANDBOX_VIOLATION"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeFileReadFailed        = "FILE_READ_FAILED"
	CodeFileWriteFailed       = "FILE_WRITE_FAILED"
	CodeUserCanceled          = "USER_CANCELED"
)

const (
	ActionRetry        = "retry"
	ActionOpenSettings = "open_settings"
	ActionSetKey       = "set_key"
	ActionEditNote     = "edit_note"
)

const (
	PhaseRead      = "read"
	PhaseParse     = "parse"
	PhaseEnrich    = "enrich"
	PhaseDispatch  = "dispatch"
	PhaseDirective = "directive"
	PhaseAppend    = "append"
	PhaseSettings  = "settings"
)

// Error satisfies the error interface so an ErrorInfo can travel as one.
func (e *ErrorInfo) Error() string {
	if e.Detail == "" {
		return e.ErrorCode
	}
	return e.ErrorCode + ": " + e.Detail
}

// Message renders a one-line notification for a person.
func (e *ErrorInfo) Message() string {
	provider := e.ProviderID
	if provider == "" {
		provider = "the provider"
	}
	switch e.ErrorCode {
	case CodeEmptyInput:
		return "Nothing to send: the note has no content."
	case CodeProviderNotConfigured:
		return fmt.Sprintf("No API key configured for %s. Run `notechat keys set %s`.", provider, e.ProviderID)
	case CodeProviderAuthFailed:
		return fmt.Sprintf("%s rejected the API key.", provider)
	case CodeProviderRateLimited:
		return fmt.Sprintf("%s is rate limiting requests. Try again shortly.", provider)
	case CodeProviderUnavailable:
		return fmt.Sprintf("%s is unavailable right now.", provider)
	case CodeRequestFailed:
		return fmt.Sprintf("%s request failed with status %d: %s", provider, e.StatusCode, e.Detail)
	case CodeNetworkUnavailable:
		return fmt.Sprintf("Could not reach %s: %s", provider, e.Detail)
	case CodeEgressBlocked:
		return fmt.Sprintf("Requests to %s are blocked: %s", provider, e.Detail)
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.ErrorCode
}

func EmptyInput(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeEmptyInput,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionEditNote},
	}
}

func ProviderNotConfigured(phase, providerID, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeProviderNotConfigured,
		Phase:      phase,
		Retryable:  false,
		Actions:    []string{ActionSetKey, ActionOpenSettings},
		ProviderID: providerID,
		Detail:     detail,
	}
}

func ProviderAuthFailed(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProviderAuthFailed,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionSetKey},
	}
}

func ProviderUnavailable(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProviderUnavailable,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func ProviderRateLimited(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProviderRateLimited,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func RequestFailed(phase string, status int, body string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeRequestFailed,
		Phase:      phase,
		Retryable:  false,
		StatusCode: status,
		Detail:     body,
	}
}

func NetworkUnavailable(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNetworkUnavailable,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func EgressBlocked(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeEgressBlocked,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionOpenSettings},
		Detail:    detail,
	}
}

func ValidationFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func SandboxViolation(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeSandboxViolation,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func FileReadFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileReadFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func FileWriteFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileWriteFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func UserCanceled(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeUserCanceled,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}
