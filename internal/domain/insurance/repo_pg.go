package insurance

import (
	"context"
	"fmt"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const policyCols = `id, patient_id, provider_name, policy_number, coverage_percentage, deductable, expiry_date, is_active, created_at, updated_at`

func scanPolicy(row pgx.Row) (*Policy, error) {
	var p Policy
	err := row.Scan(&p.ID, &p.PatientID, &p.ProviderName, &p.PolicyNumber,
		&p.CoveragePercentage, &p.Deductable, &p.ExpiryDate, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Policy) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_policy (id, patient_id, provider_name, policy_number, coverage_percentage, deductable, expiry_date, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.ProviderName, p.PolicyNumber, p.CoveragePercentage,
		p.Deductable, p.ExpiryDate, p.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return scanPolicy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+policyCols+` FROM insurance_policy WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Policy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_policy SET patient_id=$2, provider_name=$3, policy_number=$4,
			coverage_percentage=$5, deductable=$6, expiry_date=$7, is_active=$8, updated_at=NOW()
		WHERE id=$1`,
		p.ID, p.PatientID, p.ProviderName, p.PolicyNumber, p.CoveragePercentage,
		p.Deductable, p.ExpiryDate, p.IsActive)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_policy WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	where := "1=1"
	args := []interface{}{}
	if patientID != nil {
		args = append(args, *patientID)
		where = "ip.patient_id = $1"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM insurance_policy ip WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT ip.id, ip.patient_id, ip.provider_name, ip.policy_number, ip.coverage_percentage,
		       ip.deductable, ip.expiry_date, ip.is_active, ip.created_at, ip.updated_at,
		       COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), '') AS patient_name
		  FROM insurance_policy ip
		  LEFT JOIN patient p ON ip.patient_id = p.id
		 WHERE %s
		 ORDER BY ip.created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var policies []*Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.PatientID, &p.ProviderName, &p.PolicyNumber,
			&p.CoveragePercentage, &p.Deductable, &p.ExpiryDate, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt, &p.PatientName); err != nil {
			return nil, 0, err
		}
		policies = append(policies, &p)
	}
	return policies, total, rows.Err()
}

func (r *repoPG) BestForPatient(ctx context.Context, patientID uuid.UUID) (*Policy, error) {
	return scanPolicy(r.conn(ctx).QueryRow(ctx, `
		SELECT `+policyCols+` FROM insurance_policy
		 WHERE patient_id = $1 AND (is_active OR expiry_date >= CURRENT_DATE)
		 ORDER BY is_active DESC, expiry_date DESC NULLS LAST, created_at DESC
		 LIMIT 1`, patientID))
}
