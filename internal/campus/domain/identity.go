package domain

import (
	"strings"
	"time"
)

// Identity is one principal: credentials, role and profile.
type Identity struct {
	ID           string
	Email        string // stored lower-cased
	PasswordHash string // argon2id PHC string
	Name         string
	Role         Role
	Verified     bool

	// Programs the identity administers. Only meaningful for admins; an
	// admin with none is a super admin.
	Programs []string

	Branch  string
	Program string
	Course  string
	Phone   string

	TwoFactor TwoFactorState

	CreatedBy   string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSuperAdmin is an admin without a program restriction.
func (i Identity) IsSuperAdmin() bool { return i.Role == RoleAdmin && len(i.Programs) == 0 }

// IsProgramAdmin is an admin limited to the programs it administers.
func (i Identity) IsProgramAdmin() bool { return i.Role == RoleAdmin && len(i.Programs) > 0 }

// Administers reports whether program is in the identity's admin set.
func (i Identity) Administers(program string) bool {
	for _, p := range i.Programs {
		if strings.EqualFold(p, program) {
			return true
		}
	}
	return false
}

// NormalizeEmail is the canonical form emails are compared and stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the self-service editable fields. Nil leaves the
// stored value alone.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Branch  *string
	Program *string
	Course  *string
}
