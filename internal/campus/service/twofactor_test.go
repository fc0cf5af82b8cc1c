package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testPhone = "+15551234567"

func totpCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestTOTPEnrollmentAcceptsAdjacentSteps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "totp@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)
	require.Equal(t, domain.MethodTOTP, enr.Method)
	require.NotEmpty(t, enr.Secret)
	require.Contains(t, enr.OTPAuthURL, "otpauth://totp/")

	st, err := e.twofa.Status(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
	require.True(t, st.Pending)

	now := e.clock.Now()
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, totpCode(t, enr.Secret, now.Add(-30*time.Second))))

	st, err = e.twofa.Status(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, st.Enabled)
	require.Equal(t, domain.MethodTOTP, st.Method)

	require.NoError(t, e.twofa.Disable(ctx, user.ID, totpCode(t, enr.Secret, now.Add(30*time.Second))))

	st, err = e.twofa.Status(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
	require.False(t, st.Pending)
}

func TestTOTPRejectsCodesTwoStepsAway(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "skew@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)

	now := e.clock.Now()
	for _, off := range []time.Duration{-60 * time.Second, 60 * time.Second} {
		err := e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, totpCode(t, enr.Secret, now.Add(off)))
		require.ErrorIs(t, err, service.ErrInvalidCode, "offset %s", off)
	}

	st, err := e.twofa.Status(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
}

func TestConfirmWithoutEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "none@x.edu", domain.RoleStudent)

	err := e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, "123456")
	require.ErrorIs(t, err, service.ErrNoEnrollmentInProgress)

	_, err = e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)

	// An sms confirmation does not match a totp enrollment.
	err = e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, "123456")
	require.ErrorIs(t, err, service.ErrNoEnrollmentInProgress)
	require.True(t, service.IsCodeFailure(err))
}

func TestSMSEnrollmentAndLoginChallenge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "sms@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)
	require.Equal(t, "********4567", enr.MaskedPhone)
	require.NotNil(t, enr.ExpiresAt)
	require.Len(t, enr.DevCode, 6)
	require.Equal(t, enr.DevCode, e.notifier.lastCode(t, testPhone))

	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode))

	// The enrollment code is consumed.
	stored, err := e.store.Identities().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.TwoFactor.Enabled)
	require.Empty(t, stored.TwoFactor.CodeHash)

	res, err := e.accounts.Login(ctx, "SMS@x.edu", "password123")
	require.NoError(t, err)
	require.Equal(t, service.LoginChallengePending, res.Outcome)
	require.Nil(t, res.Session)
	require.NotNil(t, res.Pending)
	require.Equal(t, domain.MethodSMS, res.Method)
	require.Equal(t, "********4567", res.MaskedContact)

	code := e.notifier.lastCode(t, testPhone)
	require.Equal(t, res.DevCode, code)

	auth, err := e.twofa.VerifyLoginChallenge(ctx, res.Pending.Value, code)
	require.NoError(t, err)
	require.Equal(t, user.ID, auth.Identity.ID)
	require.Equal(t, "session", auth.Session.Use)

	claims, err := e.sessions.VerifySession(auth.Session.Value)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)
	require.Equal(t, "student", claims.Role)

	// Single use.
	_, err = e.twofa.VerifyLoginChallenge(ctx, res.Pending.Value, code)
	require.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "resend@x.edu", domain.RoleStudent)

	first, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)

	second, err := e.twofa.ResendCode(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "********4567", second.MaskedPhone)

	if first.DevCode != second.DevCode {
		err = e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, first.DevCode)
		require.ErrorIs(t, err, service.ErrInvalidCode)
	}
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, second.DevCode))
}

func TestSMSCodeExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "late@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)

	e.clock.Advance(domain.SMSCodeTTL)

	err = e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode)
	require.ErrorIs(t, err, service.ErrCodeExpired)
	require.True(t, service.IsCodeFailure(err))

	st, err := e.twofa.Status(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, st.Enabled)
}

func TestDisableChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "disable@x.edu", domain.RoleStudent)

	require.ErrorIs(t, e.twofa.Disable(ctx, user.ID, "123456"), service.ErrNotEnabled)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, totpCode(t, enr.Secret, e.clock.Now())))

	require.ErrorIs(t, e.twofa.Disable(ctx, user.ID, "not-a-code"), service.ErrInvalidCode)

	_, err = e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.ErrorIs(t, err, service.ErrAlreadyEnabled)
}

func TestDisableSMSWithoutPendingCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "nocode@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode))

	// No code outstanding after activation.
	require.ErrorIs(t, e.twofa.Disable(ctx, user.ID, enr.DevCode), service.ErrInvalidCode)

	issued, err := e.twofa.ResendCode(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, e.twofa.Disable(ctx, user.ID, issued.DevCode))
}

func TestBeginEnrollmentValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "valid@x.edu", domain.RoleStudent)

	_, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, "")
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, "call me")
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodNone, "")
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.twofa.BeginEnrollment(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", domain.MethodTOTP, "")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestResendRequiresSMS(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "resend-none@x.edu", domain.RoleStudent)

	_, err := e.twofa.ResendCode(ctx, user.ID)
	require.ErrorIs(t, err, service.ErrNotConfigured)

	_, err = e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)

	_, err = e.twofa.ResendCode(ctx, user.ID)
	require.ErrorIs(t, err, service.ErrNotConfigured)
}

func TestVerifyLoginChallengeTokenChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "tokens@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, totpCode(t, enr.Secret, e.clock.Now())))
	user, err = e.store.Identities().GetByID(ctx, user.ID)
	require.NoError(t, err)

	code := totpCode(t, enr.Secret, e.clock.Now())

	_, err = e.twofa.VerifyLoginChallenge(ctx, "garbage", code)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	// A full session is not a pending token.
	session, err := e.sessions.IssueSession(user)
	require.NoError(t, err)
	_, err = e.twofa.VerifyLoginChallenge(ctx, session.Value, code)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	stale := *e.sessions
	stale.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := stale.IssuePending(user)
	require.NoError(t, err)
	_, err = e.twofa.VerifyLoginChallenge(ctx, expired.Value, code)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	pending, err := e.sessions.IssuePending(user)
	require.NoError(t, err)
	auth, err := e.twofa.VerifyLoginChallenge(ctx, pending.Value, code)
	require.NoError(t, err)
	require.NotNil(t, auth.Identity.LastLoginAt)
}

func TestVerifyLoginChallengeAfterDisable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "stale@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodTOTP, "")
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodTOTP, totpCode(t, enr.Secret, e.clock.Now())))

	res, err := e.accounts.Login(ctx, user.Email, "password123")
	require.NoError(t, err)
	require.Equal(t, service.LoginChallengePending, res.Outcome)
	require.Empty(t, res.MaskedContact)

	require.NoError(t, e.store.Identities().DisableTwoFactor(ctx, user.ID))

	_, err = e.twofa.VerifyLoginChallenge(ctx, res.Pending.Value, totpCode(t, enr.Secret, e.clock.Now()))
	require.ErrorIs(t, err, service.ErrAccountState)
}

func TestSMSLoginCodeIsSingleUseUnderConcurrency(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "race@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode))

	res, err := e.accounts.Login(ctx, user.Email, "password123")
	require.NoError(t, err)
	code := res.DevCode

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.twofa.VerifyLoginChallenge(ctx, res.Pending.Value, code)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.True(t, errors.Is(err, service.ErrInvalidCode), "unexpected error: %v", err)
	}
	require.Equal(t, 1, ok)
}

func TestResendLoginCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "relogin@x.edu", domain.RoleStudent)

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode))

	res, err := e.accounts.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	issued, err := e.twofa.ResendLoginCode(ctx, res.Pending.Value)
	require.NoError(t, err)
	require.Equal(t, issued.DevCode, e.notifier.lastCode(t, testPhone))

	_, err = e.twofa.VerifyLoginChallenge(ctx, res.Pending.Value, issued.DevCode)
	require.NoError(t, err)

	_, err = e.twofa.ResendLoginCode(ctx, "nope")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestDispatchFailureDoesNotFailEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.seed(t, "offline@x.edu", domain.RoleStudent)

	e.notifier.err = errors.New("gateway down")

	enr, err := e.twofa.BeginEnrollment(ctx, user.ID, domain.MethodSMS, testPhone)
	require.NoError(t, err)
	require.NoError(t, e.twofa.ConfirmEnrollment(ctx, user.ID, domain.MethodSMS, enr.DevCode))
}
