package appointment

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

const apptSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.branch_id, a.appointment_date,
	       a.appointment_time, a.status, a.created_at, a.updated_at,
	       COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), '') AS patient_name,
	       COALESCE(TRIM(CONCAT(s.first_name, ' ', s.last_name)), '') AS doctor_name,
	       COALESCE(b.branch_name, '') AS branch_name
	  FROM appointment a
	  LEFT JOIN patient p ON a.patient_id = p.id
	  LEFT JOIN staff s   ON a.doctor_id  = s.id
	  LEFT JOIN branch b  ON a.branch_id  = b.id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.BranchID, &a.AppointmentDate,
		&a.AppointmentTime, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&a.PatientName, &a.DoctorName, &a.BranchName)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, branch_id, appointment_date, appointment_time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.BranchID, a.AppointmentDate, a.AppointmentTime, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, apptSelect+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET patient_id=$2, doctor_id=$3, branch_id=$4,
			appointment_date=$5, appointment_time=$6, status=$7, updated_at=NOW()
		WHERE id=$1`,
		a.ID, a.PatientID, a.DoctorID, a.BranchID, a.AppointmentDate, a.AppointmentTime, a.Status)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := "1=1"
	args := []interface{}{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where += fmt.Sprintf(" AND %s = $%d", cond, len(args))
	}
	if f.PatientID != nil {
		add("a.patient_id", *f.PatientID)
	}
	if f.DoctorID != nil {
		add("a.doctor_id", *f.DoctorID)
	}
	if f.BranchID != nil {
		add("a.branch_id", *f.BranchID)
	}
	if f.Status != "" {
		add("a.status", f.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.appointment_date DESC, a.appointment_time DESC LIMIT $%d OFFSET $%d`,
		apptSelect, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository { return &historyRepoPG{pool: pool} }

func (r *historyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *historyRepoPG) Create(ctx context.Context, h *History) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_history (id, appointment_id, previous_status, new_status, reason, modified_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.AppointmentID, h.PreviousStatus, h.NewStatus, h.Reason, h.ModifiedBy)
	return err
}

func (r *historyRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*History, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, previous_status, new_status, reason, modified_by, changed_at
		  FROM appointment_history
		 WHERE appointment_id = $1
		 ORDER BY changed_at DESC`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*History
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.AppointmentID, &h.PreviousStatus, &h.NewStatus,
			&h.Reason, &h.ModifiedBy, &h.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
