package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/store"
)

type identitiesRepo struct {
	db dbtx
}

const identityColumns = `
	id, email, password_hash, name, role, verified,
	branch, program, course, phone,
	twofa_enabled, twofa_method, totp_secret, totp_temp_secret,
	sms_phone, sms_code_hash, sms_code_issued_at, sms_code_expires_at,
	created_by, last_login_at, created_at, updated_at`

func scanIdentity(row interface{ Scan(...any) error }) (domain.Identity, error) {
	var (
		id                           domain.Identity
		role, method                 string
		verified, enabled            int
		totpSecret, totpTemp         sql.NullString
		smsPhone, smsHash, createdBy sql.NullString
		issued, expires, lastLogin   sql.NullInt64
		createdAt, updatedAt         int64
	)
	err := row.Scan(
		&id.ID, &id.Email, &id.PasswordHash, &id.Name, &role, &verified,
		&id.Branch, &id.Program, &id.Course, &id.Phone,
		&enabled, &method, &totpSecret, &totpTemp,
		&smsPhone, &smsHash, &issued, &expires,
		&createdBy, &lastLogin, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Identity{}, err
	}

	id.Role = domain.Role(role)
	id.Verified = verified == 1
	id.TwoFactor = domain.TwoFactorState{
		Enabled:       enabled == 1,
		Method:        domain.TwoFactorMethod(method),
		Secret:        totpSecret.String,
		TempSecret:    totpTemp.String,
		Phone:         smsPhone.String,
		CodeHash:      smsHash.String,
		CodeIssuedAt:  millisPtr(issued),
		CodeExpiresAt: millisPtr(expires),
	}
	id.CreatedBy = createdBy.String
	id.LastLoginAt = millisPtr(lastLogin)
	id.CreatedAt = fromMillis(createdAt)
	id.UpdatedAt = fromMillis(updatedAt)
	return id, nil
}

func (r *identitiesRepo) get(ctx context.Context, where string, arg any) (domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM identities WHERE `+where, arg)
	id, err := scanIdentity(row)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	if id.Programs, err = r.programs(ctx, id.ID); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

func (r *identitiesRepo) programs(ctx context.Context, identityID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT program FROM identity_admin_programs WHERE identity_id = ? ORDER BY created_at, program`,
		identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *identitiesRepo) GetByID(ctx context.Context, id string) (domain.Identity, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *identitiesRepo) GetByEmail(ctx context.Context, email string) (domain.Identity, error) {
	return r.get(ctx, `email = ?`, domain.NormalizeEmail(email))
}

func (r *identitiesRepo) Create(ctx context.Context, id domain.Identity) error {
	now := time.Now()
	if id.CreatedAt.IsZero() {
		id.CreatedAt = now
	}
	method := id.TwoFactor.Method
	if method == "" {
		method = domain.MethodNone
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (
			id, email, password_hash, name, role, verified,
			branch, program, course, phone,
			twofa_enabled, twofa_method, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.ID, domain.NormalizeEmail(id.Email), id.PasswordHash, id.Name, string(id.Role), boolInt(id.Verified),
		id.Branch, id.Program, id.Course, id.Phone,
		boolInt(id.TwoFactor.Enabled), string(method), nullString(id.CreatedBy),
		toMillis(id.CreatedAt), toMillis(now),
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, p := range id.Programs {
		if err := r.AddAdminProgram(ctx, id.ID, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *identitiesRepo) UpdateRole(ctx context.Context, id string, role domain.Role, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET role = ?, verified = ?, updated_at = ? WHERE id = ?`,
		string(role), boolInt(verified), toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *identitiesRepo) AddAdminProgram(ctx context.Context, id, program string) error {
	program = strings.TrimSpace(program)
	if program == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO identity_admin_programs (identity_id, program, created_at) VALUES (?, ?, ?)`,
		id, program, toMillis(time.Now()))
	return err
}

func (r *identitiesRepo) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	add("name", upd.Name)
	add("phone", upd.Phone)
	add("branch", upd.Branch)
	add("program", upd.Program)
	add("course", upd.Course)

	sets = append(sets, "updated_at = ?")
	args = append(args, toMillis(time.Now()), id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *identitiesRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET last_login_at = ? WHERE id = ?`, toMillis(at), id)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *identitiesRepo) BeginTOTPEnrollment(ctx context.Context, id, tempSecret string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			twofa_method = 'totp', totp_temp_secret = ?, totp_secret = NULL,
			sms_phone = NULL, sms_code_hash = NULL, sms_code_issued_at = NULL, sms_code_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND twofa_enabled = 0`,
		tempSecret, toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) ActivateTOTP(ctx context.Context, id, tempSecret string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			twofa_enabled = 1, twofa_method = 'totp', totp_secret = totp_temp_secret, totp_temp_secret = NULL,
			updated_at = ?
		WHERE id = ? AND twofa_enabled = 0 AND totp_temp_secret = ?`,
		toMillis(time.Now()), id, tempSecret)
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) BeginSMSEnrollment(ctx context.Context, id, phone string, code store.SMSCode) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			twofa_method = 'sms', totp_secret = NULL, totp_temp_secret = NULL,
			sms_phone = ?, sms_code_hash = ?, sms_code_issued_at = ?, sms_code_expires_at = ?,
			updated_at = ?
		WHERE id = ? AND twofa_enabled = 0`,
		phone, code.Hash, toMillis(code.IssuedAt), toMillis(code.ExpiresAt), toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) ReplaceSMSCode(ctx context.Context, id string, code store.SMSCode) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			sms_code_hash = ?, sms_code_issued_at = ?, sms_code_expires_at = ?, updated_at = ?
		WHERE id = ? AND twofa_method = 'sms' AND sms_phone IS NOT NULL AND sms_phone <> ''`,
		code.Hash, toMillis(code.IssuedAt), toMillis(code.ExpiresAt), toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) ActivateSMS(ctx context.Context, id, codeHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			twofa_enabled = 1,
			sms_code_hash = NULL, sms_code_issued_at = NULL, sms_code_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND twofa_enabled = 0 AND twofa_method = 'sms'
		  AND sms_code_hash = ? AND sms_code_expires_at > ?`,
		toMillis(time.Now()), id, codeHash, toMillis(now))
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) ConsumeSMSCode(ctx context.Context, id, codeHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			sms_code_hash = NULL, sms_code_issued_at = NULL, sms_code_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND sms_code_hash = ? AND sms_code_expires_at > ?`,
		toMillis(time.Now()), id, codeHash, toMillis(now))
	return expectOne(res, err, store.ErrConflict)
}

func (r *identitiesRepo) DisableTwoFactor(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			twofa_enabled = 0, twofa_method = 'none', totp_secret = NULL, totp_temp_secret = NULL,
			sms_phone = NULL, sms_code_hash = NULL, sms_code_issued_at = NULL, sms_code_expires_at = NULL,
			updated_at = ?
		WHERE id = ?`,
		toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *identitiesRepo) PurgeExpiredSMSCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			sms_code_hash = NULL, sms_code_issued_at = NULL, sms_code_expires_at = NULL
		WHERE sms_code_hash IS NOT NULL AND sms_code_expires_at <= ?`,
		toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *identitiesRepo) Counts(ctx context.Context) (store.IdentityCounts, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role, verified, COUNT(*) FROM identities GROUP BY role, verified`)
	if err != nil {
		return store.IdentityCounts{}, err
	}
	defer rows.Close()

	out := store.IdentityCounts{ByRole: make(map[domain.Role]int)}
	for rows.Next() {
		var (
			role     string
			verified int
			n        int
		)
		if err := rows.Scan(&role, &verified, &n); err != nil {
			return store.IdentityCounts{}, fmt.Errorf("scan identity counts: %w", err)
		}
		out.Total += n
		out.ByRole[domain.Role(role)] += n
		if verified == 1 {
			out.Verified += n
		} else {
			out.Unverified += n
		}
	}
	return out, rows.Err()
}
