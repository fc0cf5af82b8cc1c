package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleStudent   Role = "student"
	RoleFaculty   Role = "faculty"
	RoleAdmin     Role = "admin"
	RolePending   Role = "pending"
	RoleLibrary   Role = "library"
	RolePlacement Role = "placement"
	RoleParent    Role = "parent"
)

var ErrUnknownRole = errors.New("unknown role")

var roles = []Role{RoleStudent, RoleFaculty, RoleAdmin, RolePending, RoleLibrary, RolePlacement, RoleParent}

// ParseRole accepts the wire form of a role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// Requestable reports whether r may be the target of a role request.
// Nobody asks to become pending.
func (r Role) Requestable() bool { return r.Valid() && r != RolePending }

// Reviewer reports whether r may review role requests at all.
func (r Role) Reviewer() bool { return r == RoleFaculty || r == RoleAdmin }

func (r Role) String() string { return string(r) }

// RequestStatus is the role request lifecycle state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

var ErrUnknownStatus = errors.New("unknown request status")

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Terminal reports whether no further decision may be applied.
func (s RequestStatus) Terminal() bool { return s == StatusApproved || s == StatusRejected }

// Decision is a reviewer's verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var ErrUnknownDecision = errors.New("unknown decision")

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	case "approved":
		return DecisionApprove, nil
	case "rejected":
		return DecisionReject, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecision, s)
}

// Status is the request status the decision leads to.
func (d Decision) Status() RequestStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}
