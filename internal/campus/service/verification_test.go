package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/retryx"
	"github.com/stretchr/testify/require"
)

func TestCanDecide(t *testing.T) {
	faculty := domain.Identity{Role: domain.RoleFaculty, Program: "CS"}
	progAdmin := domain.Identity{Role: domain.RoleAdmin, Programs: []string{"CS", "Math"}}
	super := domain.Identity{Role: domain.RoleAdmin}
	student := domain.Identity{Role: domain.RoleStudent, Program: "CS"}

	tests := []struct {
		name     string
		reviewer domain.Identity
		role     domain.Role
		program  string
		want     bool
	}{
		{"faculty own program student", faculty, domain.RoleStudent, "cs", true},
		{"faculty other program", faculty, domain.RoleStudent, "EE", false},
		{"faculty unscoped hidden", faculty, domain.RoleStudent, "", false},
		{"faculty cannot grant faculty", faculty, domain.RoleFaculty, "CS", false},
		{"program admin student", progAdmin, domain.RoleStudent, "Math", true},
		{"program admin faculty", progAdmin, domain.RoleFaculty, "CS", true},
		{"program admin unscoped", progAdmin, domain.RoleFaculty, "", true},
		{"program admin foreign program", progAdmin, domain.RoleStudent, "EE", false},
		{"program admin cannot grant admin", progAdmin, domain.RoleAdmin, "CS", false},
		{"super admin admin", super, domain.RoleAdmin, "CS", true},
		{"super admin library", super, domain.RoleLibrary, "", true},
		{"super admin placement", super, domain.RolePlacement, "", true},
		{"super admin parent", super, domain.RoleParent, "", true},
		{"super admin unscoped student", super, domain.RoleStudent, "", true},
		{"super admin scoped student", super, domain.RoleStudent, "CS", false},
		{"super admin faculty", super, domain.RoleFaculty, "", false},
		{"student never", student, domain.RoleStudent, "CS", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, service.CanDecide(tt.reviewer, tt.role, tt.program))
		})
	}
}

func TestLoadReviewer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	student := e.seed(t, "s@x.edu", domain.RoleStudent)
	_, err := e.verify.LoadReviewer(ctx, student.ID)
	require.ErrorIs(t, err, service.ErrForbidden)

	fac := e.seed(t, "f@x.edu", domain.RoleFaculty, withProgram("CS"))
	got, err := e.verify.LoadReviewer(ctx, fac.ID)
	require.NoError(t, err)
	require.Equal(t, fac.ID, got.ID)
}

func TestListPendingIsScoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	faculty := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	progAdmin := e.seed(t, "padmin@x.edu", domain.RoleAdmin, administering("CS"))
	super := e.seed(t, "root@x.edu", domain.RoleAdmin)

	csStudent := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("A", "a@x.edu", "")})
	e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "EE", Staged: staged("B", "b@x.edu", "")})
	unscoped := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Staged: staged("C", "c@x.edu", "")})
	stagedCS := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Staged: staged("D", "d@x.edu", "cs")})
	csFaculty := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleFaculty, Program: "CS", Staged: staged("E", "e@x.edu", "")})
	library := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleLibrary, Staged: staged("F", "f@x.edu", "")})

	// Program comes from the linked identity.
	member := e.seed(t, "member@x.edu", domain.RolePending, withProgram("CS"))
	linked := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, UserID: member.ID})

	ids := func(reqs []domain.RoleRequest) []string {
		out := make([]string, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.ID)
		}
		return out
	}

	got, err := e.verify.ListPending(ctx, faculty)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{csStudent.ID, stagedCS.ID, linked.ID}, ids(got))
	for _, r := range got {
		require.Equal(t, domain.RoleStudent, r.RequestedRole)
	}

	got, err = e.verify.ListPending(ctx, progAdmin)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{csStudent.ID, unscoped.ID, stagedCS.ID, csFaculty.ID, linked.ID}, ids(got))

	got, err = e.verify.ListPending(ctx, super)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{unscoped.ID, library.ID}, ids(got))

	_, err = e.verify.ListPending(ctx, member)
	require.ErrorIs(t, err, service.ErrForbidden)
}

func TestApproveProvisionsNewIdentity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))

	req := e.fileRequest(t, domain.RoleRequest{
		RequestedRole: domain.RoleStudent,
		Program:       "CS",
		Staged:        staged("Jane Doe", "jane@x.edu", "CS"),
	})

	out, err := e.verify.Approve(ctx, reviewer, req.ID, "welcome")
	require.NoError(t, err)
	require.NotNil(t, out.Identity)
	require.Equal(t, domain.RoleStudent, out.Identity.Role)
	require.True(t, out.Identity.Verified)
	require.Equal(t, "CS", out.Identity.Program)
	require.Equal(t, "jane@x.edu", out.Identity.Email)
	require.Equal(t, "Jane Doe", out.Identity.Name)
	require.Equal(t, reviewer.ID, out.Identity.CreatedBy)

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Status)
	require.Equal(t, out.Identity.ID, stored.UserID)
	require.Equal(t, reviewer.ID, stored.ReviewedBy)
	require.Equal(t, "welcome", stored.Remarks)
	require.NotNil(t, stored.ReviewedAt)

	sent := e.notifier.sent(notify.TemplateRoleDecision)
	require.Len(t, sent, 1)
	require.Equal(t, "jane@x.edu", sent[0].Recipient)
	require.Equal(t, "approved", sent[0].Data["status"])
}

func TestApproveTwiceIsAlreadyProcessed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("Jane", "jane@x.edu", "")})

	_, err := e.verify.Approve(ctx, reviewer, req.ID, "")
	require.NoError(t, err)

	before, err := e.store.Identities().Counts(ctx)
	require.NoError(t, err)

	_, err = e.verify.Approve(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrAlreadyProcessed)
	_, err = e.verify.Reject(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrAlreadyProcessed)

	after, err := e.store.Identities().Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, before.Total, after.Total)
}

func TestApproveMissingStagedPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "root@x.edu", domain.RoleAdmin)

	reg := staged("No Pass", "nopass@x.edu", "")
	reg.PasswordHash = ""
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleLibrary, Staged: reg})

	_, err := e.verify.Approve(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrValidation)
	require.ErrorIs(t, err, service.ErrMissingUserData)

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)

	_, err = e.store.Identities().GetByEmail(ctx, "nopass@x.edu")
	require.Error(t, err)
}

func TestApproveRoleChangeForExistingIdentity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	super := e.seed(t, "root@x.edu", domain.RoleAdmin)
	progAdmin := e.seed(t, "padmin@x.edu", domain.RoleAdmin, administering("CS"))

	member := e.seed(t, "member@x.edu", domain.RoleStudent, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleFaculty, CurrentRole: domain.RoleStudent, UserID: member.ID})

	out, err := e.verify.Approve(ctx, progAdmin, req.ID, "")
	require.NoError(t, err)
	require.Equal(t, member.ID, out.Identity.ID)
	require.Equal(t, domain.RoleFaculty, out.Identity.Role)

	// Admin grants add to the administered set.
	first := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleAdmin, UserID: progAdmin.ID, Program: "Math"})
	out, err = e.verify.Approve(ctx, super, first.ID, "")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"CS", "Math"}, out.Identity.Programs)

	again := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleAdmin, UserID: progAdmin.ID, Program: "math"})
	out, err = e.verify.Approve(ctx, super, again.ID, "")
	require.NoError(t, err)
	require.Len(t, out.Identity.Programs, 2)
}

func TestApproveLinksIdentityCreatedElsewhere(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	super := e.seed(t, "root@x.edu", domain.RoleAdmin)

	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RolePlacement, Staged: staged("Pat", "pat@x.edu", "")})
	existing := e.seed(t, "PAT@x.edu", domain.RolePending)

	out, err := e.verify.Approve(ctx, super, req.ID, "")
	require.NoError(t, err)
	require.Equal(t, existing.ID, out.Identity.ID)
	require.Equal(t, domain.RolePlacement, out.Identity.Role)
	require.True(t, out.Identity.Verified)

	counts, err := e.store.Identities().Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, existing.ID, stored.UserID)
}

func TestDecisionOutsideScopeIsForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	faculty := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))

	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleFaculty, Program: "CS", Staged: staged("X", "x@x.edu", "")})
	other := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "EE", Staged: staged("Y", "y@x.edu", "")})

	_, err := e.verify.Approve(ctx, faculty, req.ID, "")
	require.ErrorIs(t, err, service.ErrForbidden)
	_, err = e.verify.Reject(ctx, faculty, other.ID, "")
	require.ErrorIs(t, err, service.ErrForbidden)

	for _, id := range []string{req.ID, other.ID} {
		stored, err := e.store.RoleRequests().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, stored.Status)
	}
}

func TestDecideUnknownRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	super := e.seed(t, "root@x.edu", domain.RoleAdmin)

	_, err := e.verify.Approve(ctx, super, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.verify.Approve(ctx, super, "not-an-id", "")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	super := e.seed(t, "root@x.edu", domain.RoleAdmin)
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleLibrary, Staged: staged("L", "l@x.edu", "")})

	out, err := e.verify.Reject(ctx, super, req.ID, "  not this term ")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, out.Status)
	require.Equal(t, "not this term", out.Remarks)

	_, err = e.store.Identities().GetByEmail(ctx, "l@x.edu")
	require.Error(t, err)

	sent := e.notifier.sent(notify.TemplateRoleDecision)
	require.Len(t, sent, 1)
	require.Equal(t, "l@x.edu", sent[0].Recipient)
	require.Equal(t, "rejected", sent[0].Data["status"])
}

func TestApproveRetriesTransientWrites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("R", "r@x.edu", "")})

	ids := &flakyIdentities{Identities: e.store.Identities(), createFails: 2}
	svc := *e.verify
	svc.Store = &flakyStore{Store: e.store, ids: ids}

	out, err := svc.Approve(ctx, reviewer, req.ID, "")
	require.NoError(t, err)
	require.Equal(t, 3, ids.creates)
	require.Equal(t, "r@x.edu", out.Identity.Email)
}

func TestApproveExhaustedLeavesRequestPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("R", "r@x.edu", "")})

	// The write lands but can never be read back.
	ids := &flakyIdentities{Identities: e.store.Identities(), readFails: 3}
	svc := *e.verify
	svc.Store = &flakyStore{Store: e.store, ids: ids}

	_, err := svc.Approve(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrPersistenceFailure)
	require.ErrorIs(t, err, retryx.ErrExhausted)
	require.Equal(t, service.KindPersistenceFailure, service.KindOf(err))

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)

	// Unconfirmed writes are rolled back.
	_, err = e.store.Identities().GetByEmail(ctx, "r@x.edu")
	require.ErrorIs(t, err, store.ErrNotFound)

	out, err := e.verify.Approve(ctx, reviewer, req.ID, "")
	require.NoError(t, err)
	require.Equal(t, "r@x.edu", out.Identity.Email)

	counts, err := e.store.Identities().Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)
}

func TestApproveLosesToConcurrentReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pa := e.seed(t, "pa@x.edu", domain.RoleAdmin, administering("CS"))
	stu := e.seed(t, "stu@x.edu", domain.RoleStudent, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{UserID: stu.ID, RequestedRole: domain.RoleFaculty, CurrentRole: domain.RoleStudent, Program: "CS"})

	svc := *e.verify
	svc.Store = &racingStore{Store: e.store, hook: func() {
		_, err := e.verify.Reject(ctx, pa, req.ID, "no")
		require.NoError(t, err)
	}}

	_, err := svc.Approve(ctx, pa, req.ID, "")
	require.ErrorIs(t, err, service.ErrAlreadyProcessed)

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, stored.Status)

	id, err := e.store.Identities().GetByID(ctx, stu.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, id.Role)
}

func TestApproveLosesToConcurrentRejectForNewAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("N", "n@x.edu", "")})

	svc := *e.verify
	svc.Store = &racingStore{Store: e.store, hook: func() {
		_, err := e.verify.Reject(ctx, reviewer, req.ID, "")
		require.NoError(t, err)
	}}

	_, err := svc.Approve(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrAlreadyProcessed)

	_, err = e.store.Identities().GetByEmail(ctx, "n@x.edu")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestApproveReportsConsistencyError(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("C", "c@x.edu", "")})

	// The confirming read passes, the final check after approval fails.
	ids := &flakyIdentities{Identities: e.store.Identities(), passReads: 1, readFails: 5}
	svc := *e.verify
	svc.Store = &flakyStore{Store: e.store, ids: ids}

	_, err := svc.Approve(ctx, reviewer, req.ID, "")
	require.ErrorIs(t, err, service.ErrConsistency)
	require.Equal(t, service.KindConsistency, service.KindOf(err))

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Status)
}

func TestConcurrentApprovalsCreateOneIdentity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("Dup", "dup@x.edu", "")})

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
			_, err := e.verify.Approve(ctx, reviewer, req.ID, "")
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
		require.ErrorIs(t, err, service.ErrAlreadyProcessed)
	}
	require.Equal(t, 1, ok)

	counts, err := e.store.Identities().Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)

	stored, err := e.store.RoleRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	id, err := e.store.Identities().GetByEmail(ctx, "dup@x.edu")
	require.NoError(t, err)
	require.Equal(t, id.ID, stored.UserID)
}

func TestBatchDecide(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))

	a := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("A", "a@x.edu", "")})
	b := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("B", "b@x.edu", "")})
	foreign := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "EE", Staged: staged("C", "c@x.edu", "")})

	res, err := e.verify.BatchDecide(ctx, reviewer,
		[]string{a.ID, b.ID, a.ID, foreign.ID, "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
		domain.DecisionApprove, "batch ok")
	require.NoError(t, err)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 2, res.Failed)
	require.Len(t, res.Items, 4)

	byID := map[string]service.BatchItem{}
	for _, it := range res.Items {
		byID[it.RequestID] = it
	}
	require.True(t, byID[a.ID].OK)
	require.Equal(t, "approved", byID[a.ID].Status)
	require.NotEmpty(t, byID[a.ID].UserID)
	require.True(t, byID[b.ID].OK)
	require.Equal(t, service.KindForbidden, byID[foreign.ID].Kind)
	require.Equal(t, service.KindNotFound, byID["01ARZ3NDEKTSV4RRFFQ69G5FAV"].Kind)

	for _, id := range []string{a.ID, b.ID} {
		stored, err := e.store.RoleRequests().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "batch ok", stored.Remarks)
	}

	_, err = e.verify.BatchDecide(ctx, reviewer, nil, domain.DecisionApprove, "")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestBatchDecideHidesStorageDetail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := e.seed(t, "fac@x.edu", domain.RoleFaculty, withProgram("CS"))
	req := e.fileRequest(t, domain.RoleRequest{RequestedRole: domain.RoleStudent, Program: "CS", Staged: staged("B", "b@x.edu", "")})

	ids := &flakyIdentities{Identities: e.store.Identities(), createFails: 100}
	svc := *e.verify
	svc.Store = &flakyStore{Store: e.store, ids: ids}

	res, err := svc.BatchDecide(ctx, reviewer, []string{req.ID, "nope"}, domain.DecisionApprove, "")
	require.NoError(t, err)
	require.Equal(t, 2, res.Failed)

	require.Equal(t, service.KindPersistenceFailure, res.Items[0].Kind)
	require.Equal(t, "the change could not be saved, try again", res.Items[0].Message)
	require.NotContains(t, res.Items[0].Message, errDiskFull.Error())

	// Input problems keep their explanation.
	require.Equal(t, service.KindValidation, res.Items[1].Kind)
	require.Contains(t, res.Items[1].Message, "nope")
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "internal server error", service.Describe(errDiskFull))
	require.Equal(t, service.ErrAlreadyProcessed.Error(), service.Describe(service.ErrAlreadyProcessed))
	require.NotContains(t, service.Describe(fmt.Errorf("%w: %w", service.ErrConsistency, errDiskFull)), "disk")
}
