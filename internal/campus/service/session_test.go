package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuerSeparatesTokenClasses(t *testing.T) {
	e := newEnv(t)
	id := domain.Identity{
		ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Role:      domain.RoleAdmin,
		Programs:  []string{"CS"},
		TwoFactor: domain.TwoFactorState{Enabled: true, Method: domain.MethodTOTP},
	}

	session, err := e.sessions.IssueSession(id)
	require.NoError(t, err)
	require.Equal(t, "session", session.Use)
	require.WithinDuration(t, time.Now().Add(service.DefaultSessionTTL), session.ExpiresAt, 5*time.Second)

	pending, err := e.sessions.IssuePending(id)
	require.NoError(t, err)
	require.Equal(t, "2fa_pending", pending.Use)
	require.WithinDuration(t, time.Now().Add(service.DefaultPendingTTL), pending.ExpiresAt, 5*time.Second)

	c, err := e.sessions.VerifySession(session.Value)
	require.NoError(t, err)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, []string{"CS"}, c.Programs)

	_, err = e.sessions.VerifySession(pending.Value)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	c, err = e.sessions.VerifyPending(pending.Value)
	require.NoError(t, err)
	require.Equal(t, "totp", c.Method)

	_, err = e.sessions.VerifyPending(session.Value)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = e.sessions.Verify("")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, service.KindValidation, service.KindOf(service.ErrDuplicatePending))
	require.Equal(t, service.KindValidation, service.KindOf(service.ErrMissingUserData))
	require.Equal(t, service.KindAlreadyProcessed, service.KindOf(service.ErrAlreadyProcessed))
	require.Equal(t, service.KindInternal, service.KindOf(errors.New("boom")))
	require.Equal(t, service.Kind(""), service.KindOf(nil))

	require.True(t, service.IsCodeFailure(service.ErrCodeExpired))
	require.False(t, service.IsCodeFailure(service.ErrNotEnabled))
}
