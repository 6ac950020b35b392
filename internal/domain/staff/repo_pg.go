package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalos/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Staff ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, first_name, last_name, role, speciality, email, branch_id, is_active, password_hash, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.Speciality,
		&s.Email, &s.BranchID, &s.IsActive, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, role, speciality, email, branch_id, is_active, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.FirstName, s.LastName, s.Role, s.Speciality, s.Email, s.BranchID, s.IsActive, s.PasswordHash)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *repoPG) Update(ctx context.Context, s *Staff) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET first_name=$2, last_name=$3, role=$4, speciality=$5,
			email=$6, branch_id=$7, is_active=$8, password_hash=$9, updated_at=NOW()
		WHERE id=$1`,
		s.ID, s.FirstName, s.LastName, s.Role, s.Speciality, s.Email, s.BranchID, s.IsActive, s.PasswordHash)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, s)
	}
	return members, total, rows.Err()
}

// =========== Branch ===========

type branchRepoPG struct{ pool *pgxpool.Pool }

func NewBranchRepoPG(pool *pgxpool.Pool) BranchRepository { return &branchRepoPG{pool: pool} }

func (r *branchRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const branchCols = `id, branch_name, location, phone, created_at, updated_at`

func scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Name, &b.Location, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *branchRepoPG) Create(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO branch (id, branch_name, location, phone)
		VALUES ($1,$2,$3,$4)`,
		b.ID, b.Name, b.Location, b.Phone)
	return err
}

func (r *branchRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return scanBranch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+branchCols+` FROM branch WHERE id = $1`, id))
}

func (r *branchRepoPG) GetByName(ctx context.Context, name string) (*Branch, error) {
	return scanBranch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+branchCols+` FROM branch WHERE branch_name = $1`, name))
}

func (r *branchRepoPG) Update(ctx context.Context, b *Branch) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE branch SET branch_name=$2, location=$3, phone=$4, updated_at=NOW()
		WHERE id=$1`,
		b.ID, b.Name, b.Location, b.Phone)
	return err
}

func (r *branchRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM branch WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *branchRepoPG) List(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM branch`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+branchCols+` FROM branch ORDER BY branch_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var branches []*Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, b)
	}
	return branches, total, rows.Err()
}

// =========== BranchAccess ===========

type accessRepoPG struct{ pool *pgxpool.Pool }

func NewBranchAccessRepoPG(pool *pgxpool.Pool) BranchAccessRepository { return &accessRepoPG{pool: pool} }

func (r *accessRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *accessRepoPG) Create(ctx context.Context, a *BranchAccess) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_branch_access (id, staff_id, branch_id, access_level, is_active, granted_at)
		VALUES ($1,$2,$3,$4,$5,NOW())`,
		a.ID, a.StaffID, a.BranchID, a.AccessLevel, a.IsActive)
	return err
}

func (r *accessRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*BranchAccess, error) {
	var a BranchAccess
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, staff_id, branch_id, access_level, is_active, granted_at
		FROM staff_branch_access WHERE id = $1`, id,
	).Scan(&a.ID, &a.StaffID, &a.BranchID, &a.AccessLevel, &a.IsActive, &a.GrantedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accessRepoPG) Update(ctx context.Context, a *BranchAccess) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_branch_access SET access_level=$2, is_active=$3 WHERE id=$1`,
		a.ID, a.AccessLevel, a.IsActive)
	return err
}

func (r *accessRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_branch_access WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accessRepoPG) List(ctx context.Context, staffID, branchID *uuid.UUID, limit, offset int) ([]*BranchAccess, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if staffID != nil {
		args = append(args, *staffID)
		conditions = append(conditions, fmt.Sprintf("sba.staff_id = $%d", len(args)))
	}
	if branchID != nil {
		args = append(args, *branchID)
		conditions = append(conditions, fmt.Sprintf("sba.branch_id = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_branch_access sba WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT sba.id, sba.staff_id, sba.branch_id, sba.access_level, sba.is_active, sba.granted_at,
			COALESCE(TRIM(CONCAT(s.first_name, ' ', s.last_name)), ''), COALESCE(b.branch_name, '')
		FROM staff_branch_access sba
		LEFT JOIN staff s ON sba.staff_id = s.id
		LEFT JOIN branch b ON sba.branch_id = b.id
		WHERE %s
		ORDER BY sba.granted_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var grants []*BranchAccess
	for rows.Next() {
		var a BranchAccess
		if err := rows.Scan(&a.ID, &a.StaffID, &a.BranchID, &a.AccessLevel, &a.IsActive,
			&a.GrantedAt, &a.StaffName, &a.BranchName); err != nil {
			return nil, 0, err
		}
		grants = append(grants, &a)
	}
	return grants, total, rows.Err()
}
