package generation

import (
	"errors"
	"net/http"

	"github.com/Markolissimo/treatment-summary/internal/domain/audit"
	"github.com/Markolissimo/treatment-summary/internal/domain/confirmation"
	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
	"github.com/Markolissimo/treatment-summary/internal/domain/selector"
	"github.com/Markolissimo/treatment-summary/internal/platform/llm"
)

// ErrLLMTimeout is returned when the upstream LLM call exceeds its
// deadline; distinguished from other LLM failures so it maps to 504
// instead of 502.
var ErrLLMTimeout = errors.New("llm call timed out")

// LLMCallFailedError wraps any LLM failure other than a timeout: network
// errors, non-2xx responses, or a response missing required fields.
type LLMCallFailedError struct {
	Reason error
}

func (e *LLMCallFailedError) Error() string {
	return "llm call failed: " + e.Reason.Error()
}

func (e *LLMCallFailedError) Unwrap() error {
	return e.Reason
}

// StatusFor maps an error surfaced by the generation coordinator to the
// HTTP status code §7 assigns it. Unrecognized errors map to 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrLLMTimeout):
		return http.StatusGatewayTimeout
	case isLLMCallFailed(err):
		return http.StatusBadGateway
	case errors.Is(err, selector.ErrInsufficientInput):
		return http.StatusUnprocessableEntity
	case isRuleNotFound(err), isCodeInactive(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, audit.ErrRegenerationMissingParent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, audit.ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, confirmation.ErrGenerationNotFound):
		return http.StatusNotFound
	case errors.Is(err, confirmation.ErrGenerationNotSuccessful):
		return http.StatusConflict
	case errors.Is(err, confirmation.ErrAlreadyConfirmed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	var e doctypes.ValidationErrors
	return errors.As(err, &e)
}

func isLLMCallFailed(err error) bool {
	var llmErr *LLMCallFailedError
	var httpErr *llm.HTTPError
	return errors.As(err, &llmErr) || errors.As(err, &httpErr)
}

func isRuleNotFound(err error) bool {
	var e *selector.RuleNotFoundError
	return errors.As(err, &e)
}

func isCodeInactive(err error) bool {
	var e *selector.CodeInactiveError
	return errors.As(err, &e)
}
