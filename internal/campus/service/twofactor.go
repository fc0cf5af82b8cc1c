package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpOpts is a 30 second step, six digits, SHA1, and one step of skew
// either side of now.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// TwoFactorService enrolls, verifies and disables the second factor.
type TwoFactorService struct {
	Store    store.Store
	Notifier notify.Dispatcher
	Sessions *SessionIssuer

	// Issuer labels the account in authenticator apps.
	Issuer string

	// ExposeCodes echoes freshly issued SMS codes in responses. Never set
	// in production.
	ExposeCodes bool

	Now func() time.Time
}

// Enrollment is what BeginEnrollment hands back to the user.
type Enrollment struct {
	Method domain.TwoFactorMethod `json:"method"`

	// TOTP
	Secret     string `json:"secret,omitempty"`
	OTPAuthURL string `json:"otpauth_url,omitempty"`

	// SMS
	MaskedPhone string     `json:"masked_phone,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DevCode     string     `json:"dev_code,omitempty"`
}

// CodeIssued describes a freshly sent SMS code.
type CodeIssued struct {
	MaskedPhone string    `json:"masked_phone"`
	ExpiresAt   time.Time `json:"expires_at"`
	DevCode     string    `json:"dev_code,omitempty"`
}

// TwoFactorStatus is the user-facing summary of the second factor.
type TwoFactorStatus struct {
	Enabled     bool                   `json:"enabled"`
	Method      domain.TwoFactorMethod `json:"method"`
	MaskedPhone string                 `json:"masked_phone,omitempty"`
	Pending     bool                   `json:"enrollment_pending"`
}

// Authenticated is the outcome of a completed login.
type Authenticated struct {
	Identity domain.Identity
	Session  Token
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TwoFactorService) load(ctx context.Context, identityID string) (domain.Identity, error) {
	id, err := s.Store.Identities().GetByID(ctx, identityID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("identity %s: %w", identityID, ErrNotFound)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	return id, nil
}

// Status reports the current second factor configuration.
func (s *TwoFactorService) Status(ctx context.Context, identityID string) (TwoFactorStatus, error) {
	id, err := s.load(ctx, identityID)
	if err != nil {
		return TwoFactorStatus{}, err
	}
	st := id.TwoFactor
	out := TwoFactorStatus{Enabled: st.Enabled, Method: st.Method}
	if st.Phone != "" {
		out.MaskedPhone = cryptox.MaskPhone(st.Phone)
	}
	if !st.Enabled {
		out.Pending = st.TempSecret != "" || st.HasPendingCode()
	}
	return out, nil
}

// BeginEnrollment starts enrolling method. Nothing is enabled until
// ConfirmEnrollment succeeds. Starting again replaces any earlier attempt.
func (s *TwoFactorService) BeginEnrollment(ctx context.Context, identityID string, method domain.TwoFactorMethod, phone string) (Enrollment, error) {
	phone = strings.TrimSpace(phone)
	if method == domain.MethodSMS {
		if phone == "" {
			return Enrollment{}, validationf("phone number is required for sms")
		}
		if !phonePattern.MatchString(phone) {
			return Enrollment{}, validationf("phone number must be 7 to 15 digits, optionally prefixed with +")
		}
	} else if method != domain.MethodTOTP {
		return Enrollment{}, validationf("method must be totp or sms")
	}

	id, err := s.load(ctx, identityID)
	if err != nil {
		return Enrollment{}, err
	}
	if id.TwoFactor.Enabled {
		return Enrollment{}, ErrAlreadyEnabled
	}

	if method == domain.MethodTOTP {
		return s.beginTOTP(ctx, id)
	}
	return s.beginSMS(ctx, id, phone)
}

func (s *TwoFactorService) beginTOTP(ctx context.Context, id domain.Identity) (Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: id.Email,
		Period:      uint(totpOpts.Period),
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.Store.Identities().BeginTOTPEnrollment(ctx, id.ID, key.Secret()); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Enrollment{}, ErrAlreadyEnabled
		}
		return Enrollment{}, fmt.Errorf("store totp enrollment: %w", err)
	}

	slogx.FromContext(ctx).Info("totp enrollment started", "identity_id", id.ID)
	return Enrollment{
		Method:     domain.MethodTOTP,
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	}, nil
}

func (s *TwoFactorService) beginSMS(ctx context.Context, id domain.Identity, phone string) (Enrollment, error) {
	code, rec, err := s.newCode()
	if err != nil {
		return Enrollment{}, err
	}

	if err := s.Store.Identities().BeginSMSEnrollment(ctx, id.ID, phone, rec); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Enrollment{}, ErrAlreadyEnabled
		}
		return Enrollment{}, fmt.Errorf("store sms enrollment: %w", err)
	}

	s.sendCode(ctx, id.ID, phone, code, "enrollment")

	out := Enrollment{
		Method:      domain.MethodSMS,
		MaskedPhone: cryptox.MaskPhone(phone),
		ExpiresAt:   &rec.ExpiresAt,
	}
	if s.ExposeCodes {
		out.DevCode = code
	}
	return out, nil
}

// ConfirmEnrollment checks code against the enrollment in progress and, on
// success, turns the second factor on.
func (s *TwoFactorService) ConfirmEnrollment(ctx context.Context, identityID string, method domain.TwoFactorMethod, code string) error {
	id, err := s.load(ctx, identityID)
	if err != nil {
		return err
	}
	st := id.TwoFactor
	if st.Enabled {
		return ErrAlreadyEnabled
	}
	if st.Method != method {
		return ErrNoEnrollmentInProgress
	}

	log := slogx.FromContext(ctx).With("identity_id", id.ID, "method", method)
	now := s.now()

	switch method {
	case domain.MethodTOTP:
		if st.TempSecret == "" {
			return ErrNoEnrollmentInProgress
		}
		if !validTOTP(code, st.TempSecret, now) {
			return ErrInvalidCode
		}
		if err := s.Store.Identities().ActivateTOTP(ctx, id.ID, st.TempSecret); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// Enrollment restarted or finished concurrently.
				return ErrNoEnrollmentInProgress
			}
			return fmt.Errorf("activate totp: %w", err)
		}

	case domain.MethodSMS:
		hash, err := checkSMSCode(st, code, now)
		if err != nil {
			return err
		}
		if err := s.Store.Identities().ActivateSMS(ctx, id.ID, hash, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidCode
			}
			return fmt.Errorf("activate sms: %w", err)
		}

	default:
		return ErrNoEnrollmentInProgress
	}

	log.Info("two-factor enabled")
	return nil
}

// Disable turns the second factor off after checking a current code.
func (s *TwoFactorService) Disable(ctx context.Context, identityID, code string) error {
	id, err := s.load(ctx, identityID)
	if err != nil {
		return err
	}
	if !id.TwoFactor.Enabled {
		return ErrNotEnabled
	}
	if err := s.verifyActive(ctx, id, code); err != nil {
		if IsCodeFailure(err) {
			return ErrInvalidCode
		}
		return err
	}
	if err := s.Store.Identities().DisableTwoFactor(ctx, id.ID); err != nil {
		return fmt.Errorf("disable two-factor: %w", err)
	}
	slogx.FromContext(ctx).Info("two-factor disabled", "identity_id", id.ID)
	return nil
}

// VerifyLoginChallenge completes a login that stopped at the second
// factor and mints the full session.
func (s *TwoFactorService) VerifyLoginChallenge(ctx context.Context, pendingToken, code string) (Authenticated, error) {
	claims, err := s.Sessions.VerifyPending(pendingToken)
	if err != nil {
		return Authenticated{}, err
	}

	id, err := s.Store.Identities().GetByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return Authenticated{}, fmt.Errorf("%w: identity no longer exists", ErrAccountState)
	}
	if err != nil {
		return Authenticated{}, fmt.Errorf("load identity: %w", err)
	}
	if !id.TwoFactor.Enabled {
		return Authenticated{}, fmt.Errorf("%w: two-factor is not enabled", ErrAccountState)
	}

	if err := s.verifyActive(ctx, id, code); err != nil {
		return Authenticated{}, err
	}

	now := s.now()
	if err := s.Store.Identities().TouchLastLogin(ctx, id.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to record last login", "identity_id", id.ID, "error", err)
	}
	id.LastLoginAt = &now

	tok, err := s.Sessions.IssueSession(id)
	if err != nil {
		return Authenticated{}, err
	}
	return Authenticated{Identity: id, Session: tok}, nil
}

// ResendCode replaces the current SMS code with a fresh one. The previous
// code stops working immediately.
func (s *TwoFactorService) ResendCode(ctx context.Context, identityID string) (CodeIssued, error) {
	id, err := s.load(ctx, identityID)
	if err != nil {
		return CodeIssued{}, err
	}
	return s.issueCode(ctx, id, "resend")
}

// ResendLoginCode is ResendCode for a caller that only holds a pending
// token.
func (s *TwoFactorService) ResendLoginCode(ctx context.Context, pendingToken string) (CodeIssued, error) {
	claims, err := s.Sessions.VerifyPending(pendingToken)
	if err != nil {
		return CodeIssued{}, err
	}
	id, err := s.load(ctx, claims.Subject)
	if err != nil {
		return CodeIssued{}, fmt.Errorf("%w: %w", ErrAccountState, err)
	}
	if !id.TwoFactor.Enabled {
		return CodeIssued{}, fmt.Errorf("%w: two-factor is not enabled", ErrAccountState)
	}
	return s.issueCode(ctx, id, "login")
}

// issueCode generates, stores and dispatches a new SMS code for id.
func (s *TwoFactorService) issueCode(ctx context.Context, id domain.Identity, purpose string) (CodeIssued, error) {
	st := id.TwoFactor
	if st.Method != domain.MethodSMS || st.Phone == "" {
		return CodeIssued{}, ErrNotConfigured
	}

	code, rec, err := s.newCode()
	if err != nil {
		return CodeIssued{}, err
	}
	if err := s.Store.Identities().ReplaceSMSCode(ctx, id.ID, rec); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return CodeIssued{}, ErrNotConfigured
		}
		return CodeIssued{}, fmt.Errorf("store sms code: %w", err)
	}

	s.sendCode(ctx, id.ID, st.Phone, code, purpose)

	out := CodeIssued{MaskedPhone: cryptox.MaskPhone(st.Phone), ExpiresAt: rec.ExpiresAt}
	if s.ExposeCodes {
		out.DevCode = code
	}
	return out, nil
}

func (s *TwoFactorService) newCode() (string, store.SMSCode, error) {
	code, err := cryptox.NumericCode()
	if err != nil {
		return "", store.SMSCode{}, err
	}
	now := s.now()
	return code, store.SMSCode{
		Hash:      cryptox.FingerprintToken(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.SMSCodeTTL),
	}, nil
}

// sendCode hands the code to the notifier. The code is stored and stays
// valid whether or not dispatch succeeds.
func (s *TwoFactorService) sendCode(ctx context.Context, identityID, phone, code, purpose string) {
	ctx = slogx.With(ctx, "identity_id", identityID, "purpose", purpose)
	dispatch(ctx, s.Notifier, notify.Message{
		Recipient: phone,
		Subject:   "Your verification code",
		Template:  notify.TemplateSMSCode,
		Data: map[string]string{
			"code":       code,
			"purpose":    purpose,
			"expires_in": domain.SMSCodeTTL.String(),
		},
	})
}

// verifyActive checks code against the active method. A matching SMS code
// is consumed.
func (s *TwoFactorService) verifyActive(ctx context.Context, id domain.Identity, code string) error {
	st := id.TwoFactor
	now := s.now()

	switch st.Method {
	case domain.MethodTOTP:
		if st.Secret == "" || !validTOTP(code, st.Secret, now) {
			return ErrInvalidCode
		}
		return nil

	case domain.MethodSMS:
		if !st.HasPendingCode() {
			return ErrInvalidCode
		}
		hash, err := checkSMSCode(st, code, now)
		if err != nil {
			return err
		}
		if err := s.Store.Identities().ConsumeSMSCode(ctx, id.ID, hash, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidCode
			}
			return fmt.Errorf("consume sms code: %w", err)
		}
		return nil
	}
	return ErrInvalidCode
}

// checkSMSCode compares code with the stored fingerprint and returns the
// fingerprint for the conditional consume.
func checkSMSCode(st domain.TwoFactorState, code string, now time.Time) (string, error) {
	if !st.HasPendingCode() {
		return "", ErrNoEnrollmentInProgress
	}
	hash := cryptox.FingerprintToken(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(hash), []byte(st.CodeHash)) != 1 {
		return "", ErrInvalidCode
	}
	if st.CodeExpired(now) {
		return "", ErrCodeExpired
	}
	return hash, nil
}

func validTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, now.UTC(), totpOpts)
	return err == nil && ok
}
