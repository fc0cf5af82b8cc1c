package campussdk

import (
	"errors"
	"fmt"
)

// Error codes returned in the "error" field of failed responses.
const (
	ErrorCodeValidation             = "validation"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeForbidden              = "forbidden"
	ErrorCodeAlreadyProcessed       = "already_processed"
	ErrorCodeInvalidCode            = "invalid_code"
	ErrorCodeNotConfigured          = "not_configured"
	ErrorCodeNotEnabled             = "not_enabled"
	ErrorCodeAlreadyEnabled         = "already_enabled"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeAccountState           = "account_state"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeConflict               = "conflict"
	ErrorCodeInsufficientRole       = "insufficient_role"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
	ErrorCodePersistenceFailure     = "persistence_failure"
	ErrorCodeConsistency            = "consistency_error"
	ErrorCodeServerError            = "server_error"
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeMethodNotAllowed       = "method_not_allowed"
	ErrorCodeUnsupportedContentType = "unsupported_content_type"
)

// APIError is the body of every failed response.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
