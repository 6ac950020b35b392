package treatment

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

type catalogueRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogueRepoPG(pool *pgxpool.Pool) CatalogueRepository { return &catalogueRepoPG{pool: pool} }

func (r *catalogueRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const catalogueCols = `id, treatment_name, description, icd10_code, cpt_code, standard_cost, category, is_active, created_at, updated_at`

func scanCatalogue(row pgx.Row) (*CatalogueEntry, error) {
	var e CatalogueEntry
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.ICD10Code, &e.CPTCode,
		&e.StandardCost, &e.Category, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *catalogueRepoPG) Create(ctx context.Context, e *CatalogueEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_catalogue (id, treatment_name, description, icd10_code, cpt_code, standard_cost, category, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.Name, e.Description, e.ICD10Code, e.CPTCode, e.StandardCost, e.Category, e.IsActive)
	return err
}

func (r *catalogueRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CatalogueEntry, error) {
	return scanCatalogue(r.conn(ctx).QueryRow(ctx,
		`SELECT `+catalogueCols+` FROM treatment_catalogue WHERE id = $1`, id))
}

func (r *catalogueRepoPG) Update(ctx context.Context, e *CatalogueEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_catalogue SET treatment_name=$2, description=$3, icd10_code=$4,
			cpt_code=$5, standard_cost=$6, category=$7, is_active=$8, updated_at=NOW()
		WHERE id=$1`,
		e.ID, e.Name, e.Description, e.ICD10Code, e.CPTCode, e.StandardCost, e.Category, e.IsActive)
	return err
}

func (r *catalogueRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment_catalogue WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *catalogueRepoPG) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*CatalogueEntry, int, error) {
	where := "1=1"
	if !includeInactive {
		where = "is_active"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatment_catalogue WHERE `+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM treatment_catalogue WHERE %s ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		catalogueCols, where)
	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*CatalogueEntry
	for rows.Next() {
		e, err := scanCatalogue(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const treatmentSelect = `
	SELECT t.id, t.appointment_id, t.treatment_type_id, t.cost, t.created_at,
	       COALESCE(tc.treatment_name, '') AS treatment_name
	  FROM treatment t
	  LEFT JOIN treatment_catalogue tc ON t.treatment_type_id = tc.id`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.AppointmentID, &t.CatalogueID, &t.Cost, &t.CreatedAt, &t.TreatmentName)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment (id, appointment_id, treatment_type_id, cost)
		VALUES ($1,$2,$3,$4)`,
		t.ID, t.AppointmentID, t.CatalogueID, t.Cost)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(r.conn(ctx).QueryRow(ctx, treatmentSelect+` WHERE t.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Treatment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment SET appointment_id=$2, treatment_type_id=$3, cost=$4
		WHERE id=$1`,
		t.ID, t.AppointmentID, t.CatalogueID, t.Cost)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Treatment, int, error) {
	where := "1=1"
	args := []interface{}{}
	if appointmentID != nil {
		args = append(args, *appointmentID)
		where = "t.appointment_id = $1"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatment t WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`,
		treatmentSelect, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var treatments []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		treatments = append(treatments, t)
	}
	return treatments, total, rows.Err()
}

func (r *repoPG) SumCostByAppointment(ctx context.Context, appointmentID uuid.UUID) (float64, error) {
	var sum float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(cost), 0) FROM treatment WHERE appointment_id = $1`,
		appointmentID).Scan(&sum)
	return sum, err
}
