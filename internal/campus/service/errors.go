package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("not permitted for this reviewer")
	ErrAlreadyProcessed       = errors.New("role request already processed")
	ErrInvalidCode            = errors.New("invalid code")
	ErrCodeExpired            = errors.New("code expired")
	ErrNoEnrollmentInProgress = errors.New("no two-factor enrollment in progress")
	ErrNotConfigured          = errors.New("sms two-factor is not configured")
	ErrNotEnabled             = errors.New("two-factor authentication is not enabled")
	ErrAlreadyEnabled         = errors.New("two-factor authentication is already enabled")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAccountState           = errors.New("account is not in a state that allows this")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrConflict               = errors.New("conflict")

	// ErrPersistenceFailure means a write or its confirming read kept
	// failing after retries. Nothing was marked approved.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrConsistency means the request was approved but its identity could
	// not be read back afterwards. The two records have diverged and an
	// operator should run reconciliation.
	ErrConsistency = errors.New("consistency error")

	ErrDuplicatePending = fmt.Errorf("%w: already have a pending role change request", ErrValidation)
	ErrMissingUserData  = fmt.Errorf("%w: missing required user data", ErrValidation)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Kind is the stable, machine-checkable class of a service error.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindForbidden              Kind = "forbidden"
	KindAlreadyProcessed       Kind = "already_processed"
	KindInvalidCode            Kind = "invalid_code"
	KindCodeExpired            Kind = "code_expired"
	KindNoEnrollmentInProgress Kind = "no_enrollment_in_progress"
	KindNotConfigured          Kind = "not_configured"
	KindNotEnabled             Kind = "not_enabled"
	KindAlreadyEnabled         Kind = "already_enabled"
	KindInvalidToken           Kind = "invalid_token"
	KindAccountState           Kind = "account_state"
	KindInvalidCredentials     Kind = "invalid_credentials"
	KindConflict               Kind = "conflict"
	KindPersistenceFailure     Kind = "persistence_failure"
	KindConsistency            Kind = "consistency_error"
	KindInternal               Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrConsistency, KindConsistency},
	{ErrPersistenceFailure, KindPersistenceFailure},
	{ErrValidation, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrForbidden, KindForbidden},
	{ErrAlreadyProcessed, KindAlreadyProcessed},
	{ErrInvalidCode, KindInvalidCode},
	{ErrCodeExpired, KindCodeExpired},
	{ErrNoEnrollmentInProgress, KindNoEnrollmentInProgress},
	{ErrNotConfigured, KindNotConfigured},
	{ErrNotEnabled, KindNotEnabled},
	{ErrAlreadyEnabled, KindAlreadyEnabled},
	{ErrInvalidToken, KindInvalidToken},
	{ErrAccountState, KindAccountState},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrConflict, KindConflict},
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Describe returns the text a client may see for err. Storage and
// unclassified failures get a fixed message; the detail belongs in the log.
func Describe(err error) string {
	switch KindOf(err) {
	case KindPersistenceFailure:
		return "the change could not be saved, try again"
	case KindConsistency:
		return "the change was saved but could not be confirmed"
	case KindInternal:
		return "internal server error"
	}
	return err.Error()
}

// redacted reports whether Describe hides the detail of err.
func redacted(err error) bool {
	switch KindOf(err) {
	case KindPersistenceFailure, KindConsistency, KindInternal:
		return true
	}
	return false
}

// IsCodeFailure reports whether err is one of the second factor code
// failures that are reported to clients as a plain invalid code.
func IsCodeFailure(err error) bool {
	switch KindOf(err) {
	case KindInvalidCode, KindCodeExpired, KindNoEnrollmentInProgress:
		return true
	}
	return false
}
