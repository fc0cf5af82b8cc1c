package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/store"
)

type roleRequestsRepo struct {
	db dbtx
}

const roleRequestColumns = `
	id, user_id, requested_role, from_role, reason, program,
	status, reviewed_by, reviewed_at, remarks,
	reg_name, reg_email, reg_password_hash, reg_branch, reg_program, reg_course, reg_phone,
	created_at, updated_at`

func scanRoleRequest(row interface{ Scan(...any) error }) (domain.RoleRequest, error) {
	var (
		req                                   domain.RoleRequest
		requested, from, status               string
		userID, program, reviewedBy, remarks  sql.NullString
		regName, regEmail, regHash, regBranch sql.NullString
		regProgram, regCourse, regPhone       sql.NullString
		reviewedAt                            sql.NullInt64
		createdAt, updatedAt                  int64
	)
	err := row.Scan(
		&req.ID, &userID, &requested, &from, &req.Reason, &program,
		&status, &reviewedBy, &reviewedAt, &remarks,
		&regName, &regEmail, &regHash, &regBranch, &regProgram, &regCourse, &regPhone,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.RoleRequest{}, err
	}

	req.UserID = userID.String
	req.RequestedRole = domain.Role(requested)
	req.CurrentRole = domain.Role(from)
	req.Program = program.String
	req.Status = domain.RequestStatus(status)
	req.ReviewedBy = reviewedBy.String
	req.ReviewedAt = millisPtr(reviewedAt)
	req.Remarks = remarks.String
	req.CreatedAt = fromMillis(createdAt)
	req.UpdatedAt = fromMillis(updatedAt)

	if regEmail.Valid || regName.Valid || regHash.Valid {
		req.Staged = &domain.StagedRegistration{
			Name:         regName.String,
			Email:        regEmail.String,
			PasswordHash: regHash.String,
			Branch:       regBranch.String,
			Program:      regProgram.String,
			Course:       regCourse.String,
			Phone:        regPhone.String,
		}
	}
	return req, nil
}

func (r *roleRequestsRepo) list(ctx context.Context, where string, args ...any) ([]domain.RoleRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roleRequestColumns+` FROM role_requests WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoleRequest
	for rows.Next() {
		req, err := scanRoleRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *roleRequestsRepo) Create(ctx context.Context, req domain.RoleRequest) error {
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	status := req.Status
	if status == "" {
		status = domain.StatusPending
	}
	from := req.CurrentRole
	if from == "" {
		from = domain.RolePending
	}

	var s domain.StagedRegistration
	if req.Staged != nil {
		s = *req.Staged
		s.Email = domain.NormalizeEmail(s.Email)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO role_requests (
			id, user_id, requested_role, from_role, reason, program, status,
			reg_name, reg_email, reg_password_hash, reg_branch, reg_program, reg_course, reg_phone,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, nullString(req.UserID), string(req.RequestedRole), string(from), req.Reason, nullString(req.Program),
		string(status),
		nullString(s.Name), nullString(s.Email), nullString(s.PasswordHash), nullString(s.Branch),
		nullString(s.Program), nullString(s.Course), nullString(s.Phone),
		toMillis(req.CreatedAt), toMillis(now),
	)
	return mapConstraint(err)
}

func (r *roleRequestsRepo) GetByID(ctx context.Context, id string) (domain.RoleRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roleRequestColumns+` FROM role_requests WHERE id = ?`, id)
	req, err := scanRoleRequest(row)
	if err != nil {
		return domain.RoleRequest{}, mapNotFound(err)
	}
	return req, nil
}

func (r *roleRequestsRepo) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.RoleRequest, error) {
	return r.list(ctx, `status = ?`, string(status))
}

func (r *roleRequestsRepo) ListByUser(ctx context.Context, userID string) ([]domain.RoleRequest, error) {
	return r.list(ctx, `user_id = ?`, userID)
}

func (r *roleRequestsRepo) exists(ctx context.Context, where string, arg any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM role_requests WHERE status = 'pending' AND `+where+` LIMIT 1`, arg).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (r *roleRequestsRepo) HasPendingForUser(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, `user_id = ?`, userID)
}

func (r *roleRequestsRepo) HasPendingForEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `reg_email = ?`, domain.NormalizeEmail(email))
}

func (r *roleRequestsRepo) Decide(ctx context.Context, id string, d store.DecisionRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE role_requests SET
			status = ?, reviewed_by = ?, reviewed_at = ?, remarks = ?,
			user_id = COALESCE(?, user_id),
			updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(d.Status), nullString(d.ReviewedBy), toMillis(d.ReviewedAt), nullString(d.Remarks),
		nullString(d.UserID), toMillis(time.Now()), id)
	if err := expectOne(res, err, store.ErrConflict); err != nil {
		if errors.Is(err, store.ErrConflict) {
			if _, gerr := r.GetByID(ctx, id); gerr != nil {
				return gerr
			}
		}
		return err
	}
	return nil
}

func (r *roleRequestsRepo) LinkUser(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE role_requests SET user_id = ?, updated_at = ? WHERE id = ?`,
		userID, toMillis(time.Now()), id)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *roleRequestsRepo) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM role_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[domain.RequestStatus]int{
		domain.StatusPending:  0,
		domain.StatusApproved: 0,
		domain.StatusRejected: 0,
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.RequestStatus(status)] = n
	}
	return out, rows.Err()
}
