package httperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/verifact/verifact-server-go/internal/gemini"
)

// ErrorCode: stable machine-readable API error code. The human-readable
// `error` message stays the user-facing contract; codes are additive.
type ErrorCode string

const (
	// ErrorCodeInternal: unclassified server-side failure.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeValidation: request body failed validation.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeMissingInput: claim text absent or empty.
	ErrorCodeMissingInput ErrorCode = "MISSING_INPUT"
	// ErrorCodeMissingAPIKey: no completion credential configured.
	ErrorCodeMissingAPIKey ErrorCode = "MISSING_API_KEY"
	// ErrorCodeQuotaExceeded: daily per-client quota exhausted.
	ErrorCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	// ErrorCodeHTTPRateLimit: per-minute request ceiling exceeded.
	ErrorCodeHTTPRateLimit ErrorCode = "HTTP_RATE_LIMIT"
	// ErrorCodeLLM: upstream completion call failed.
	ErrorCodeLLM ErrorCode = "LLM_ERROR"
	// ErrorCodeLLMTimeout: upstream completion call timed out.
	ErrorCodeLLMTimeout ErrorCode = "LLM_TIMEOUT"
)

// ErrorResponse: API error body. `error` carries the user-facing message.
type ErrorResponse struct {
	Error     string         `json:"error"`
	ErrorCode string         `json:"error_code"`
	RequestID *string        `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Error: internal standard error type.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Response: converts an error into an HTTP status and response body.
func Response(err error, requestID string) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError("unknown error")
	}

	var requestIDPtr *string
	if requestID != "" {
		requestIDPtr = &requestID
	}

	return apiErr.Status, ErrorResponse{
		Error:     apiErr.Message,
		ErrorCode: string(apiErr.Code),
		RequestID: requestIDPtr,
		Details:   apiErr.Details,
	}
}

// FromError: maps an arbitrary error to the internal error type.
// Upstream failures surface with their underlying message.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return NewMissingAPIKey()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewLLMTimeout()
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(err)
	}

	return NewInternalError(err.Error())
}

// NewInternalError: unclassified 500.
func NewInternalError(message string) *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
	}
}

// NewValidationError: request body validation failure.
func NewValidationError(err error) *Error {
	return &Error{
		Code:    ErrorCodeValidation,
		Status:  http.StatusBadRequest,
		Message: "Richiesta non valida",
		Details: validationDetails(err),
	}
}

// NewMissingInput: empty or absent claim text.
func NewMissingInput() *Error {
	return &Error{
		Code:    ErrorCodeMissingInput,
		Status:  http.StatusBadRequest,
		Message: "Input mancante",
	}
}

// NewMissingAPIKey: completion credential not configured.
func NewMissingAPIKey() *Error {
	return &Error{
		Code:    ErrorCodeMissingAPIKey,
		Status:  http.StatusInternalServerError,
		Message: "API Key mancante",
	}
}

// NewQuotaExceeded: daily quota exhausted. retryAfterSeconds counts down
// to the window reset.
func NewQuotaExceeded(retryAfterSeconds int64) *Error {
	return &Error{
		Code:    ErrorCodeQuotaExceeded,
		Status:  http.StatusTooManyRequests,
		Message: "Limite giornaliero di richieste raggiunto. Riprova dopo la scadenza della finestra.",
		Details: map[string]any{"retry_after_seconds": retryAfterSeconds},
	}
}

// NewRateLimitExceeded: per-minute request ceiling exceeded.
func NewRateLimitExceeded(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeHTTPRateLimit,
		Status:  http.StatusTooManyRequests,
		Message: "Troppe richieste. Riprova tra poco.",
		Details: details,
	}
}

// NewLLMTimeout: upstream completion call exceeded its deadline.
func NewLLMTimeout() *Error {
	return &Error{
		Code:    ErrorCodeLLMTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: "Il servizio di analisi non ha risposto in tempo",
	}
}

// NewLLMError: upstream completion failure with the underlying message.
func NewLLMError(message string) *Error {
	return &Error{
		Code:    ErrorCodeLLM,
		Status:  http.StatusInternalServerError,
		Message: message,
	}
}

// FieldError: one field-level validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, validationErr := range validationErrors {
			fields = append(fields, FieldError{
				Field:   validationErr.Field(),
				Message: validationErr.Error(),
				Value:   validationErr.Value(),
			})
		}
		return map[string]any{"errors": fields}
	}

	return map[string]any{
		"errors": []FieldError{
			{
				Field:   "body",
				Message: err.Error(),
			},
		},
	}
}
