package domain

import (
	"strings"
	"time"
)

// RoleRequest is an applicant's ask to hold a role, awaiting review.
type RoleRequest struct {
	ID string

	// UserID links the request to an existing identity. Empty for
	// pre-account applications until approval provisions the account.
	UserID string

	RequestedRole Role
	CurrentRole   Role
	Reason        string
	Program       string

	Status     RequestStatus
	ReviewedBy string
	ReviewedAt *time.Time
	Remarks    string

	// Staged is the registration data of a pre-account applicant.
	Staged *StagedRegistration

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StagedRegistration holds what is needed to create the identity on approval.
type StagedRegistration struct {
	Name         string
	Email        string
	PasswordHash string
	Branch       string
	Program      string
	Course       string
	Phone        string
}

// Complete reports whether the required fields for account creation are set.
func (s *StagedRegistration) Complete() bool {
	return s != nil &&
		strings.TrimSpace(s.Name) != "" &&
		strings.TrimSpace(s.Email) != "" &&
		s.PasswordHash != ""
}

// Email of the applicant as far as the request knows it.
func (r RoleRequest) Email() string {
	if r.Staged == nil {
		return ""
	}
	return NormalizeEmail(r.Staged.Email)
}

// ScopeProgram is the program the request is scoped to: the explicit
// program, falling back to the staged one.
func (r RoleRequest) ScopeProgram() string {
	if p := strings.TrimSpace(r.Program); p != "" {
		return p
	}
	if r.Staged != nil {
		return strings.TrimSpace(r.Staged.Program)
	}
	return ""
}

// IsPending reports whether a decision may still be made.
func (r RoleRequest) IsPending() bool { return r.Status == StatusPending }
