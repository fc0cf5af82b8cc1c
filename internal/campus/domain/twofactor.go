package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SMSCodeTTL is how long an issued SMS code stays valid.
const SMSCodeTTL = 10 * time.Minute

// TwoFactorMethod is the second factor transport.
type TwoFactorMethod string

const (
	MethodNone TwoFactorMethod = "none"
	MethodTOTP TwoFactorMethod = "totp"
	MethodSMS  TwoFactorMethod = "sms"
)

var ErrUnknownMethod = errors.New("unknown two-factor method")

// ParseTwoFactorMethod accepts totp or sms. "none" is a state, not a choice.
func ParseTwoFactorMethod(s string) (TwoFactorMethod, error) {
	switch m := TwoFactorMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodTOTP, MethodSMS:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// TwoFactorState is the second factor material embedded in an identity.
//
// While Enabled is false, Method names the enrollment in progress (if any).
// Once enabled it names the active method. Material for a method that is
// not in use is always cleared.
type TwoFactorState struct {
	Enabled bool
	Method  TwoFactorMethod

	Secret     string // active TOTP secret, base32
	TempSecret string // TOTP secret awaiting confirmation

	Phone         string
	CodeHash      string // fingerprint of the last issued SMS code
	CodeIssuedAt  *time.Time
	CodeExpiresAt *time.Time
}

// HasPendingCode reports whether an unconsumed SMS code is on file.
func (s TwoFactorState) HasPendingCode() bool { return s.CodeHash != "" }

// CodeExpired reports whether the stored SMS code has lapsed at now. A
// missing expiry counts as expired.
func (s TwoFactorState) CodeExpired(now time.Time) bool {
	return s.CodeExpiresAt == nil || !now.Before(*s.CodeExpiresAt)
}
