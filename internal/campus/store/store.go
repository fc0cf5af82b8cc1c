package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict is returned by conditional updates whose precondition no
	// longer holds, e.g. deciding a request that is no longer pending.
	ErrConflict = errors.New("store: conditional update lost")
)

// Store is the root data access interface. Drivers expose sub-repositories
// so transactional and non-transactional access share one shape.
type Store interface {
	Identities() Identities
	RoleRequests() RoleRequests

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or
	// Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Only use the repositories of the tx handed to fn inside it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Identities interface {
	GetByID(ctx context.Context, id string) (domain.Identity, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (domain.Identity, error)

	// Create inserts a new identity and its administered programs. A
	// duplicate id or email yields ErrAlreadyExists.
	Create(ctx context.Context, id domain.Identity) error

	// UpdateRole sets role and verified. ErrNotFound when id is unknown.
	UpdateRole(ctx context.Context, id string, role domain.Role, verified bool) error

	// AddAdminProgram adds program to the administered set. Adding a
	// program that is already present is a no-op.
	AddAdminProgram(ctx context.Context, id, program string) error

	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// BeginTOTPEnrollment stores tempSecret as the pending TOTP secret and
	// clears any SMS material. Only applies while 2FA is disabled.
	BeginTOTPEnrollment(ctx context.Context, id, tempSecret string) error

	// ActivateTOTP promotes the pending secret to active, provided it still
	// equals tempSecret. ErrConflict otherwise.
	ActivateTOTP(ctx context.Context, id, tempSecret string) error

	// BeginSMSEnrollment records phone and a fresh code, clearing any
	// pending TOTP secret. Only applies while 2FA is disabled.
	BeginSMSEnrollment(ctx context.Context, id, phone string, code SMSCode) error

	// ReplaceSMSCode overwrites the current SMS code. The identity must use
	// the sms method and have a phone on file, ErrConflict otherwise.
	ReplaceSMSCode(ctx context.Context, id string, code SMSCode) error

	// ActivateSMS enables sms 2FA by consuming the code with fingerprint
	// codeHash, provided it has not expired at now. ErrConflict otherwise.
	ActivateSMS(ctx context.Context, id, codeHash string, now time.Time) error

	// ConsumeSMSCode clears the code with fingerprint codeHash, provided it
	// has not expired at now. ErrConflict when another caller got there
	// first or the code no longer matches.
	ConsumeSMSCode(ctx context.Context, id, codeHash string, now time.Time) error

	// DisableTwoFactor clears every piece of second factor material.
	DisableTwoFactor(ctx context.Context, id string) error

	// PurgeExpiredSMSCodes clears codes that lapsed before now.
	PurgeExpiredSMSCodes(ctx context.Context, now time.Time) (int64, error)

	Counts(ctx context.Context) (IdentityCounts, error)
}

// SMSCode is a freshly issued one-time code, already fingerprinted.
type SMSCode struct {
	Hash      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IdentityCounts struct {
	Total      int
	Verified   int
	Unverified int
	ByRole     map[domain.Role]int
}

type RoleRequests interface {
	// Create inserts a pending request. A second pending request for the
	// same identity, or the same staged email, yields ErrAlreadyExists.
	Create(ctx context.Context, req domain.RoleRequest) error

	GetByID(ctx context.Context, id string) (domain.RoleRequest, error)

	// ListByStatus returns requests oldest first.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.RoleRequest, error)
	ListByUser(ctx context.Context, userID string) ([]domain.RoleRequest, error)

	HasPendingForUser(ctx context.Context, userID string) (bool, error)
	HasPendingForEmail(ctx context.Context, email string) (bool, error)

	// Decide moves a pending request to its terminal state. It only
	// applies while the stored status is still pending, ErrConflict
	// otherwise. A non-empty d.UserID links the request in the same write.
	Decide(ctx context.Context, id string, d DecisionRecord) error

	// LinkUser points an already approved request at userID.
	LinkUser(ctx context.Context, id, userID string) error

	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error)
}

// DecisionRecord is the write applied by Decide.
type DecisionRecord struct {
	Status     domain.RequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	Remarks    string
	UserID     string
}
