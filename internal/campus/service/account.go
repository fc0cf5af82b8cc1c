package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/idx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 256
	maxReasonLength   = 1000
)

// AccountService covers self-service account flows: registration, login,
// profile and role request submission.
type AccountService struct {
	Store     store.Store
	Notifier  notify.Dispatcher
	Sessions  *SessionIssuer
	TwoFactor *TwoFactorService
	Now       func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Registration is the input of Register and Apply.
type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Branch   string
	Program  string
	Course   string

	// RequestedRole is optional for Register and required for Apply.
	RequestedRole string
	Reason        string
}

// RoleRequestInput is a role change asked for by an existing identity.
type RoleRequestInput struct {
	RequestedRole string
	Reason        string
	Program       string
}

// LoginOutcome tags the variant of a LoginResult.
type LoginOutcome string

const (
	LoginNoChallenge      LoginOutcome = "no_challenge"
	LoginChallengePending LoginOutcome = "challenge_pending"
)

// LoginResult is either a full session (NoChallenge) or a pending token
// that must be exchanged through VerifyLoginChallenge (ChallengePending).
type LoginResult struct {
	Outcome  LoginOutcome
	Identity domain.Identity

	// NoChallenge
	Session *Token

	// ChallengePending
	Pending       *Token
	Method        domain.TwoFactorMethod
	MaskedContact string
	DevCode       string
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnPasswordCheck spends the same work as a real verification so unknown
// emails are not distinguishable by timing.
func burnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("campus-dummy-password")
	})
	_ = cryptox.VerifyPassword(password, dummyHash)
}

func validateEmail(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationf("email %q is not a valid address", email)
	}
	return email, nil
}

func validatePassword(pw string) error {
	switch {
	case len(pw) < MinPasswordLength:
		return validationf("password must be at least %d characters", MinPasswordLength)
	case len(pw) > MaxPasswordLength:
		return validationf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

func validatePhone(phone string) error {
	if phone != "" && !phonePattern.MatchString(phone) {
		return validationf("phone number must be 7 to 15 digits, optionally prefixed with +")
	}
	return nil
}

func parseRequestedRole(s string) (domain.Role, error) {
	r, err := domain.ParseRole(s)
	if err != nil {
		return "", validationf("%v", err)
	}
	if !r.Requestable() {
		return "", validationf("role %q cannot be requested", r)
	}
	return r, nil
}

// Register creates an unverified identity with the pending role. When a
// role is named, a request for it is filed in the same transaction.
func (s *AccountService) Register(ctx context.Context, in Registration) (domain.Identity, *domain.RoleRequest, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return domain.Identity{}, nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Identity{}, nil, validationf("name is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.Identity{}, nil, err
	}
	phone := strings.TrimSpace(in.Phone)
	if err := validatePhone(phone); err != nil {
		return domain.Identity{}, nil, err
	}

	var role domain.Role
	if strings.TrimSpace(in.RequestedRole) != "" {
		if role, err = parseRequestedRole(in.RequestedRole); err != nil {
			return domain.Identity{}, nil, err
		}
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Identity{}, nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	id := domain.Identity{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RolePending,
		Branch:       strings.TrimSpace(in.Branch),
		Program:      strings.TrimSpace(in.Program),
		Course:       strings.TrimSpace(in.Course),
		Phone:        phone,
		TwoFactor:    domain.TwoFactorState{Method: domain.MethodNone},
		CreatedAt:    now,
	}

	var req *domain.RoleRequest
	if role != "" {
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			reason = "new account registration"
		}
		req = &domain.RoleRequest{
			ID:            idx.New().String(),
			UserID:        id.ID,
			RequestedRole: role,
			CurrentRole:   domain.RolePending,
			Reason:        reason,
			Program:       id.Program,
			Status:        domain.StatusPending,
			CreatedAt:     now,
		}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Identities().Create(ctx, id); err != nil {
			return err
		}
		if req != nil {
			return tx.RoleRequests().Create(ctx, *req)
		}
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Identity{}, nil, fmt.Errorf("%w: an account with this email already exists", ErrConflict)
	}
	if err != nil {
		return domain.Identity{}, nil, fmt.Errorf("create account: %w", err)
	}

	slogx.FromContext(ctx).Info("account registered", slog.String("identity_id", id.ID), slog.String("requested_role", string(role)))
	if req != nil {
		s.notifyRequested(ctx, email, *req)
	}
	return id, req, nil
}

// Login checks the password. Identities with a second factor get a pending
// token instead of a session; SMS identities are sent a fresh code.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, validationf("email and password are required")
	}

	id, err := s.Store.Identities().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		burnPasswordCheck(password)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load identity: %w", err)
	}

	if err := cryptox.VerifyPassword(password, id.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unusable", slog.String("identity_id", id.ID), slog.Any("error", err))
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if !id.TwoFactor.Enabled {
		now := s.now()
		if err := s.Store.Identities().TouchLastLogin(ctx, id.ID, now); err != nil {
			slogx.FromContext(ctx).Warn("failed to record last login", slog.String("identity_id", id.ID), slog.Any("error", err))
		}
		id.LastLoginAt = &now

		tok, err := s.Sessions.IssueSession(id)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{Outcome: LoginNoChallenge, Identity: id, Session: &tok}, nil
	}

	pending, err := s.Sessions.IssuePending(id)
	if err != nil {
		return LoginResult{}, err
	}
	res := LoginResult{
		Outcome:  LoginChallengePending,
		Identity: id,
		Pending:  &pending,
		Method:   id.TwoFactor.Method,
	}
	if id.TwoFactor.Method == domain.MethodSMS {
		issued, err := s.TwoFactor.issueCode(ctx, id, "login")
		if err != nil {
			return LoginResult{}, err
		}
		res.MaskedContact = issued.MaskedPhone
		res.DevCode = issued.DevCode
	}
	return res, nil
}

// Profile returns the identity behind a session.
func (s *AccountService) Profile(ctx context.Context, identityID string) (domain.Identity, error) {
	id, err := s.Store.Identities().GetByID(ctx, identityID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("identity %s: %w", identityID, ErrNotFound)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	return id, nil
}

// UpdateProfile applies the non-nil fields of upd.
func (s *AccountService) UpdateProfile(ctx context.Context, identityID string, upd domain.ProfileUpdate) (domain.Identity, error) {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(upd.Name)
	trim(upd.Phone)
	trim(upd.Branch)
	trim(upd.Program)
	trim(upd.Course)

	if upd.Name != nil && *upd.Name == "" {
		return domain.Identity{}, validationf("name cannot be empty")
	}
	if upd.Phone != nil {
		if err := validatePhone(*upd.Phone); err != nil {
			return domain.Identity{}, err
		}
	}

	err := s.Store.Identities().UpdateProfile(ctx, identityID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("identity %s: %w", identityID, ErrNotFound)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, identityID)
}

// SubmitRoleRequest files a role change for an existing identity. Only one
// pending request per identity is allowed.
func (s *AccountService) SubmitRoleRequest(ctx context.Context, identityID string, in RoleRequestInput) (domain.RoleRequest, error) {
	role, err := parseRequestedRole(in.RequestedRole)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return domain.RoleRequest{}, validationf("reason is required")
	}
	if len(reason) > maxReasonLength {
		return domain.RoleRequest{}, validationf("reason must be at most %d characters", maxReasonLength)
	}

	id, err := s.Profile(ctx, identityID)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	if id.Role == role && role != domain.RoleAdmin {
		return domain.RoleRequest{}, validationf("you already hold the %s role", role)
	}

	rr := s.Store.RoleRequests()
	pending, err := rr.HasPendingForUser(ctx, id.ID)
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("check pending: %w", err)
	}
	if pending {
		return domain.RoleRequest{}, ErrDuplicatePending
	}

	program := strings.TrimSpace(in.Program)
	if program == "" {
		program = id.Program
	}
	req := domain.RoleRequest{
		ID:            idx.New().String(),
		UserID:        id.ID,
		RequestedRole: role,
		CurrentRole:   id.Role,
		Reason:        reason,
		Program:       program,
		Status:        domain.StatusPending,
		CreatedAt:     s.now(),
	}
	err = rr.Create(ctx, req)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent submission.
		return domain.RoleRequest{}, ErrDuplicatePending
	}
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("create role request: %w", err)
	}

	slogx.FromContext(ctx).Info("role request submitted",
		slog.String("request_id", req.ID), slog.String("identity_id", id.ID), slog.String("requested_role", string(role)))
	s.notifyRequested(ctx, id.Email, req)
	return req, nil
}

// MyRequests lists the identity's own requests, oldest first.
func (s *AccountService) MyRequests(ctx context.Context, identityID string) ([]domain.RoleRequest, error) {
	out, err := s.Store.RoleRequests().ListByUser(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("list role requests: %w", err)
	}
	return out, nil
}

// Apply files a request on behalf of someone without an account. The
// registration is staged on the request and only becomes an identity if a
// reviewer approves it.
func (s *AccountService) Apply(ctx context.Context, in Registration) (domain.RoleRequest, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.RoleRequest{}, validationf("name is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.RoleRequest{}, err
	}
	phone := strings.TrimSpace(in.Phone)
	if err := validatePhone(phone); err != nil {
		return domain.RoleRequest{}, err
	}
	if strings.TrimSpace(in.RequestedRole) == "" {
		return domain.RoleRequest{}, validationf("requested role is required")
	}
	role, err := parseRequestedRole(in.RequestedRole)
	if err != nil {
		return domain.RoleRequest{}, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return domain.RoleRequest{}, validationf("reason is required")
	}

	switch _, err := s.Store.Identities().GetByEmail(ctx, email); {
	case err == nil:
		return domain.RoleRequest{}, fmt.Errorf("%w: an account with this email already exists, sign in to request a role", ErrConflict)
	case !errors.Is(err, store.ErrNotFound):
		return domain.RoleRequest{}, fmt.Errorf("lookup email: %w", err)
	}

	pending, err := s.Store.RoleRequests().HasPendingForEmail(ctx, email)
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("check pending: %w", err)
	}
	if pending {
		return domain.RoleRequest{}, ErrDuplicatePending
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("hash password: %w", err)
	}

	program := strings.TrimSpace(in.Program)
	req := domain.RoleRequest{
		ID:            idx.New().String(),
		RequestedRole: role,
		CurrentRole:   domain.RolePending,
		Reason:        reason,
		Program:       program,
		Status:        domain.StatusPending,
		Staged: &domain.StagedRegistration{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Branch:       strings.TrimSpace(in.Branch),
			Program:      program,
			Course:       strings.TrimSpace(in.Course),
			Phone:        phone,
		},
		CreatedAt: s.now(),
	}
	err = s.Store.RoleRequests().Create(ctx, req)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.RoleRequest{}, ErrDuplicatePending
	}
	if err != nil {
		return domain.RoleRequest{}, fmt.Errorf("create application: %w", err)
	}

	slogx.FromContext(ctx).Info("application submitted", slog.String("request_id", req.ID), slog.String("requested_role", string(role)))
	s.notifyRequested(ctx, email, req)
	return req, nil
}

// EnsureAdmin creates a verified super admin with email unless an identity
// with that email already exists. It reports whether one was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email, err := validateEmail(email)
	if err != nil {
		return false, err
	}
	if err := validatePassword(password); err != nil {
		return false, err
	}

	switch _, err := s.Store.Identities().GetByEmail(ctx, email); {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Administrator"
	}
	err = s.Store.Identities().Create(ctx, domain.Identity{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleAdmin,
		Verified:     true,
		TwoFactor:    domain.TwoFactorState{Method: domain.MethodNone},
		CreatedBy:    "bootstrap",
		CreatedAt:    s.now(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	slogx.FromContext(ctx).Info("bootstrap admin created", slog.String("email", cryptox.MaskEmail(email)))
	return true, nil
}

func (s *AccountService) notifyRequested(ctx context.Context, email string, req domain.RoleRequest) {
	dispatch(ctx, s.Notifier, notify.Message{
		Recipient: email,
		Subject:   "We received your role request",
		Template:  notify.TemplateRoleRequested,
		Data: map[string]string{
			"request_id":     req.ID,
			"requested_role": string(req.RequestedRole),
		},
	})
}
