package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/idx"
	"github.com/aussiebroadwan/campus/pkg/retryx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// VerificationService decides role requests and provisions the identities
// they grant.
type VerificationService struct {
	Store    store.Store
	Notifier notify.Dispatcher

	// Retry bounds the identity write and its confirming read. Zero means
	// retryx.Default.
	Retry retryx.Policy

	Now func() time.Time
}

// Outcome is the result of a decision.
type Outcome struct {
	Request  domain.RoleRequest
	Identity *domain.Identity // set on approval
}

// BatchItem is the result for one id of a batch decision.
type BatchItem struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Status    string `json:"status,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Kind      Kind   `json:"error,omitempty"`
	Message   string `json:"error_description,omitempty"`
}

// BatchResult summarises a batch decision.
type BatchResult struct {
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"results"`
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VerificationService) retry() retryx.Policy {
	if s.Retry.Attempts <= 0 {
		return retryx.Default
	}
	return s.Retry
}

// LoadReviewer fetches the identity behind a session and checks it may
// review at all.
func (s *VerificationService) LoadReviewer(ctx context.Context, identityID string) (domain.Identity, error) {
	id, err := s.Store.Identities().GetByID(ctx, identityID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("%w: reviewer identity no longer exists", ErrForbidden)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load reviewer: %w", err)
	}
	if !id.Role.Reviewer() {
		return domain.Identity{}, ErrForbidden
	}
	return id, nil
}

// CanDecide applies the reviewer scope rules to a request for role scoped to
// program. An empty program means the request is unscoped.
func CanDecide(reviewer domain.Identity, role domain.Role, program string) bool {
	program = strings.TrimSpace(program)

	switch {
	case reviewer.Role == domain.RoleFaculty:
		// Unscoped requests are never shown to faculty.
		return role == domain.RoleStudent &&
			program != "" &&
			strings.EqualFold(program, strings.TrimSpace(reviewer.Program))

	case reviewer.IsProgramAdmin():
		if role != domain.RoleStudent && role != domain.RoleFaculty {
			return false
		}
		return program == "" || reviewer.Administers(program)

	case reviewer.IsSuperAdmin():
		switch role {
		case domain.RoleAdmin, domain.RoleLibrary, domain.RolePlacement, domain.RoleParent:
			return true
		case domain.RoleStudent:
			return program == ""
		}
	}
	return false
}

// programLookup resolves the program of linked identities, caching per
// identity for the duration of one call.
type programLookup struct {
	ids   store.Identities
	cache map[string]string
}

func newProgramLookup(ids store.Identities) *programLookup {
	return &programLookup{ids: ids, cache: map[string]string{}}
}

// resolve returns the request program, the staged program, or the program
// of the linked identity, in that order.
func (l *programLookup) resolve(ctx context.Context, req domain.RoleRequest) (string, error) {
	if p := req.ScopeProgram(); p != "" {
		return p, nil
	}
	if req.UserID == "" {
		return "", nil
	}
	if p, ok := l.cache[req.UserID]; ok {
		return p, nil
	}
	id, err := l.ids.GetByID(ctx, req.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.cache[req.UserID] = ""
		return "", nil
	case err != nil:
		return "", fmt.Errorf("resolve program: %w", err)
	}
	p := strings.TrimSpace(id.Program)
	l.cache[req.UserID] = p
	return p, nil
}

// ListPending returns the pending requests the reviewer may decide, oldest
// first.
func (s *VerificationService) ListPending(ctx context.Context, reviewer domain.Identity) ([]domain.RoleRequest, error) {
	if !reviewer.Role.Reviewer() {
		return nil, ErrForbidden
	}
	all, err := s.Store.RoleRequests().ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	lookup := newProgramLookup(s.Store.Identities())
	out := make([]domain.RoleRequest, 0, len(all))
	for _, req := range all {
		program, err := lookup.resolve(ctx, req)
		if err != nil {
			return nil, err
		}
		if CanDecide(reviewer, req.RequestedRole, program) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *VerificationService) loadRequest(ctx context.Context, requestID string) (domain.RoleRequest, error) {
	if !idx.Valid(requestID) {
		return domain.RoleRequest{}, validationf("invalid request id %q", requestID)
	}
	req, err := s.Store.RoleRequests().GetByID(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RoleRequest{}, fmt.Errorf("role request %s: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("load role request: %w", err)
	}
	return req, nil
}

// authorize loads the request and runs the pre-mutation checks shared by
// both decisions.
func (s *VerificationService) authorize(ctx context.Context, reviewer domain.Identity, requestID string) (domain.RoleRequest, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	if !req.IsPending() {
		return domain.RoleRequest{}, ErrAlreadyProcessed
	}
	program, err := newProgramLookup(s.Store.Identities()).resolve(ctx, req)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	if !CanDecide(reviewer, req.RequestedRole, program) {
		return domain.RoleRequest{}, ErrForbidden
	}
	return req, nil
}

// Decide applies decision to one request.
func (s *VerificationService) Decide(ctx context.Context, reviewer domain.Identity, requestID string, decision domain.Decision, remarks string) (Outcome, error) {
	switch decision {
	case domain.DecisionApprove:
		return s.Approve(ctx, reviewer, requestID, remarks)
	case domain.DecisionReject:
		req, err := s.Reject(ctx, reviewer, requestID, remarks)
		return Outcome{Request: req}, err
	}
	return Outcome{}, validationf("decision must be approve or reject")
}

// Approve grants the requested role. The identity write, its confirming
// read, a fresh read of the request status and the approval itself commit
// together, so a request decided by someone else in the meantime leaves
// no identity change behind.
func (s *VerificationService) Approve(ctx context.Context, reviewer domain.Identity, requestID, remarks string) (Outcome, error) {
	req, err := s.authorize(ctx, reviewer, requestID)
	if err != nil {
		return Outcome{}, err
	}
	ctx = slogx.With(ctx, "request_id", req.ID, "reviewer_id", reviewer.ID, "requested_role", req.RequestedRole)
	log := slogx.FromContext(ctx)

	now := s.now()
	remarks = strings.TrimSpace(remarks)
	identityID, err := s.provision(ctx, req, reviewer.ID, func(tx store.Tx, identityID string) error {
		current, err := tx.RoleRequests().GetByID(ctx, req.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return retryx.Permanent(fmt.Errorf("role request %s: %w", req.ID, ErrNotFound))
		case err != nil:
			return fmt.Errorf("reload role request: %w", err)
		case !current.IsPending():
			return retryx.Permanent(ErrAlreadyProcessed)
		}

		err = tx.RoleRequests().Decide(ctx, req.ID, store.DecisionRecord{
			Status:     domain.StatusApproved,
			ReviewedBy: reviewer.ID,
			ReviewedAt: now,
			Remarks:    remarks,
			UserID:     identityID,
		})
		switch {
		case errors.Is(err, store.ErrConflict):
			return retryx.Permanent(ErrAlreadyProcessed)
		case errors.Is(err, store.ErrNotFound):
			return retryx.Permanent(fmt.Errorf("role request %s: %w", req.ID, ErrNotFound))
		case err != nil:
			return fmt.Errorf("mark request approved: %w", err)
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	id, err := s.Store.Identities().GetByID(ctx, identityID)
	if err != nil {
		log.Error("approved request has no readable identity", "identity_id", identityID, "error", err)
		return Outcome{}, fmt.Errorf("%w: identity %s missing after approval: %w", ErrConsistency, identityID, err)
	}

	req.Status = domain.StatusApproved
	req.ReviewedBy = reviewer.ID
	req.ReviewedAt = &now
	req.Remarks = remarks
	req.UserID = identityID

	log.Info("role request approved", "identity_id", identityID)
	s.notifyDecision(ctx, req, id.Email)
	return Outcome{Request: req, Identity: &id}, nil
}

// Reject closes the request without touching any identity.
func (s *VerificationService) Reject(ctx context.Context, reviewer domain.Identity, requestID, remarks string) (domain.RoleRequest, error) {
	req, err := s.authorize(ctx, reviewer, requestID)
	if err != nil {
		return domain.RoleRequest{}, err
	}

	now := s.now()
	err = s.Store.RoleRequests().Decide(ctx, req.ID, store.DecisionRecord{
		Status:     domain.StatusRejected,
		ReviewedBy: reviewer.ID,
		ReviewedAt: now,
		Remarks:    strings.TrimSpace(remarks),
	})
	switch {
	case errors.Is(err, store.ErrConflict):
		return domain.RoleRequest{}, ErrAlreadyProcessed
	case errors.Is(err, store.ErrNotFound):
		return domain.RoleRequest{}, fmt.Errorf("role request %s: %w", req.ID, ErrNotFound)
	case err != nil:
		return domain.RoleRequest{}, fmt.Errorf("mark request rejected: %w", err)
	}

	req.Status = domain.StatusRejected
	req.ReviewedBy = reviewer.ID
	req.ReviewedAt = &now
	req.Remarks = strings.TrimSpace(remarks)

	slogx.FromContext(ctx).Info("role request rejected", "request_id", req.ID, "reviewer_id", reviewer.ID)

	email := req.Email()
	if req.UserID != "" {
		if id, err := s.Store.Identities().GetByID(ctx, req.UserID); err == nil {
			email = id.Email
		}
	}
	s.notifyDecision(ctx, req, email)
	return req, nil
}

// BatchDecide applies decision to every id. A failing id does not stop the
// batch. Duplicate ids are decided once.
func (s *VerificationService) BatchDecide(ctx context.Context, reviewer domain.Identity, ids []string, decision domain.Decision, remarks string) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, validationf("at least one request id is required")
	}
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return BatchResult{}, validationf("decision must be approve or reject")
	}

	seen := make(map[string]bool, len(ids))
	res := BatchResult{Items: make([]BatchItem, 0, len(ids))}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if seen[id] {
			continue
		}
		seen[id] = true

		item := BatchItem{RequestID: id}
		out, err := s.Decide(ctx, reviewer, id, decision, remarks)
		if err != nil {
			if redacted(err) {
				slogx.FromContext(ctx).Error("batch item failed", "request_id", id, "error", err)
			}
			item.Kind = KindOf(err)
			item.Message = Describe(err)
			res.Failed++
		} else {
			item.OK = true
			item.Status = string(out.Request.Status)
			item.UserID = out.Request.UserID
			res.Processed++
		}
		res.Items = append(res.Items, item)
	}

	slogx.FromContext(ctx).Info("batch decision finished",
		"reviewer_id", reviewer.ID, "decision", decision,
		"processed", res.Processed, "failed", res.Failed)
	return res, nil
}

// provision makes sure an identity holding the requested role exists for
// req and returns its id. Input problems are reported before anything is
// written. Each attempt is one transaction: the identity write, its
// confirming read and then finish, which records what the identity was
// provisioned for. An error from finish rolls the identity write back.
func (s *VerificationService) provision(ctx context.Context, req domain.RoleRequest, createdBy string, finish func(tx store.Tx, identityID string) error) (string, error) {
	if req.UserID == "" {
		_, err := s.Store.Identities().GetByEmail(ctx, req.Email())
		if errors.Is(err, store.ErrNotFound) && !req.Staged.Complete() {
			return "", ErrMissingUserData
		}
	}

	// Generated once so every attempt targets the same row.
	newID := idx.New().String()
	log := slogx.FromContext(ctx)

	var identityID string
	err := retryx.Do(ctx, s.retry(), func(ctx context.Context, attempt int) error {
		return s.Store.WithTx(ctx, func(tx store.Tx) error {
			ids := tx.Identities()
			id, err := s.writeIdentity(ctx, ids, req, newID, createdBy)
			if err != nil {
				if !final(err) {
					log.Warn("identity write failed", "attempt", attempt, "error", err)
				}
				return err
			}
			if _, err := ids.GetByID(ctx, id); err != nil {
				log.Warn("identity read-back failed", "attempt", attempt, "identity_id", id, "error", err)
				return fmt.Errorf("confirm identity %s: %w", id, err)
			}
			if err := finish(tx, id); err != nil {
				return err
			}
			identityID = id
			return nil
		})
	})
	switch {
	case err == nil:
		return identityID, nil
	case final(err):
		return "", err
	case errors.Is(err, retryx.ErrExhausted):
		log.Error("identity provisioning gave up", "error", err)
	}
	return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}

// final reports whether a provisioning error is an outcome rather than a
// storage failure.
func final(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyProcessed)
}

// writeIdentity performs one provisioning attempt against ids.
func (s *VerificationService) writeIdentity(ctx context.Context, ids store.Identities, req domain.RoleRequest, newID, createdBy string) (string, error) {
	if req.UserID != "" {
		if _, err := ids.GetByID(ctx, req.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", retryx.Permanent(fmt.Errorf("linked identity %s: %w", req.UserID, ErrNotFound))
			}
			return "", err
		}
		return req.UserID, grant(ctx, ids, req.UserID, req)
	}

	existing, err := ids.GetByEmail(ctx, req.Email())
	switch {
	case err == nil:
		return existing.ID, grant(ctx, ids, existing.ID, req)
	case !errors.Is(err, store.ErrNotFound):
		return "", err
	}

	if !req.Staged.Complete() {
		return "", retryx.Permanent(ErrMissingUserData)
	}

	st := req.Staged
	program := strings.TrimSpace(st.Program)
	if program == "" {
		program = strings.TrimSpace(req.Program)
	}
	id := domain.Identity{
		ID:           newID,
		Email:        domain.NormalizeEmail(st.Email),
		PasswordHash: st.PasswordHash,
		Name:         strings.TrimSpace(st.Name),
		Role:         req.RequestedRole,
		Verified:     true,
		Branch:       st.Branch,
		Program:      program,
		Course:       st.Course,
		Phone:        st.Phone,
		CreatedBy:    createdBy,
		TwoFactor:    domain.TwoFactorState{Method: domain.MethodNone},
	}
	if req.RequestedRole == domain.RoleAdmin && program != "" {
		id.Programs = []string{program}
	}

	// A duplicate email means the account appeared since the lookup. The
	// next attempt finds it by email.
	if err := ids.Create(ctx, id); err != nil {
		return "", err
	}
	return newID, nil
}

// grant gives an existing identity the requested role. Admin programs are
// added to the set, never replacing it.
func grant(ctx context.Context, ids store.Identities, identityID string, req domain.RoleRequest) error {
	if err := ids.UpdateRole(ctx, identityID, req.RequestedRole, true); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if req.RequestedRole == domain.RoleAdmin {
		if p := req.ScopeProgram(); p != "" {
			if err := ids.AddAdminProgram(ctx, identityID, p); err != nil {
				return fmt.Errorf("add admin program: %w", err)
			}
		}
	}
	return nil
}

func (s *VerificationService) notifyDecision(ctx context.Context, req domain.RoleRequest, email string) {
	dispatch(ctx, s.Notifier, notify.Message{
		Recipient: email,
		Subject:   "Your role request was " + string(req.Status),
		Template:  notify.TemplateRoleDecision,
		Data: map[string]string{
			"request_id":     req.ID,
			"requested_role": string(req.RequestedRole),
			"status":         string(req.Status),
			"remarks":        req.Remarks,
		},
	})
}
