package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Faculty ")
	require.NoError(t, err)
	require.Equal(t, domain.RoleFaculty, r)

	_, err = domain.ParseRole("dean")
	require.ErrorIs(t, err, domain.ErrUnknownRole)

	require.False(t, domain.RolePending.Requestable())
	require.True(t, domain.RoleParent.Requestable())
	require.True(t, domain.RoleAdmin.Reviewer())
	require.False(t, domain.RoleLibrary.Reviewer())
}

func TestParseDecisionAndStatus(t *testing.T) {
	d, err := domain.ParseDecision("approved")
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, d.Status())

	d, err = domain.ParseDecision("REJECT")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, d.Status())

	_, err = domain.ParseDecision("maybe")
	require.ErrorIs(t, err, domain.ErrUnknownDecision)

	_, err = domain.ParseRequestStatus("done")
	require.ErrorIs(t, err, domain.ErrUnknownStatus)
	require.True(t, domain.StatusRejected.Terminal())
	require.False(t, domain.StatusPending.Terminal())
}

func TestParseTwoFactorMethod(t *testing.T) {
	m, err := domain.ParseTwoFactorMethod("SMS")
	require.NoError(t, err)
	require.Equal(t, domain.MethodSMS, m)

	_, err = domain.ParseTwoFactorMethod("none")
	require.ErrorIs(t, err, domain.ErrUnknownMethod)
}

func TestAdminKinds(t *testing.T) {
	super := domain.Identity{Role: domain.RoleAdmin}
	require.True(t, super.IsSuperAdmin())
	require.False(t, super.IsProgramAdmin())

	prog := domain.Identity{Role: domain.RoleAdmin, Programs: []string{"CS"}}
	require.True(t, prog.IsProgramAdmin())
	require.True(t, prog.Administers("cs"))
	require.False(t, prog.Administers("EE"))

	fac := domain.Identity{Role: domain.RoleFaculty}
	require.False(t, fac.IsSuperAdmin())
}

func TestStagedRegistrationComplete(t *testing.T) {
	var nilStaged *domain.StagedRegistration
	require.False(t, nilStaged.Complete())
	require.False(t, (&domain.StagedRegistration{Name: "Jane", Email: "jane@x.edu"}).Complete())
	require.True(t, (&domain.StagedRegistration{Name: "Jane", Email: "jane@x.edu", PasswordHash: "h"}).Complete())
}

func TestScopeProgram(t *testing.T) {
	req := domain.RoleRequest{Staged: &domain.StagedRegistration{Program: "EE", Email: " Jane@X.edu "}}
	require.Equal(t, "EE", req.ScopeProgram())
	require.Equal(t, "jane@x.edu", req.Email())

	req.Program = "CS"
	require.Equal(t, "CS", req.ScopeProgram())

	require.Equal(t, "", domain.RoleRequest{}.ScopeProgram())
}

func TestCodeExpired(t *testing.T) {
	now := time.Now()
	var st domain.TwoFactorState
	require.True(t, st.CodeExpired(now))

	exp := now.Add(domain.SMSCodeTTL)
	st.CodeExpiresAt = &exp
	require.False(t, st.CodeExpired(now))
	require.False(t, st.CodeExpired(now.Add(9*time.Minute)))
	require.True(t, st.CodeExpired(now.Add(10*time.Minute)))
}
