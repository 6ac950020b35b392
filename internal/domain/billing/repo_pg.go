package billing

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

type invoiceRepoPG struct{ pool *pgxpool.Pool }

func NewInvoiceRepoPG(pool *pgxpool.Pool) InvoiceRepository { return &invoiceRepoPG{pool: pool} }

func (r *invoiceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const invoiceSelect = `
	SELECT i.id, i.patient_id, i.appointment_id, i.total_amount, i.insurance_amount,
	       i.patient_amount, i.status, i.due_date, i.created_at, i.updated_at,
	       COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), '') AS patient_name
	  FROM invoice i
	  LEFT JOIN patient p ON i.patient_id = p.id`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.AppointmentID, &inv.TotalAmount,
		&inv.InsuranceAmount, &inv.PatientAmount, &inv.Status, &inv.DueDate,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PatientName)
	return &inv, err
}

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, patient_id, appointment_id, total_amount, insurance_amount, patient_amount, status, due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		inv.ID, inv.PatientID, inv.AppointmentID, inv.TotalAmount, inv.InsuranceAmount,
		inv.PatientAmount, inv.Status, inv.DueDate)
	return err
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.conn(ctx).QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id))
}

func (r *invoiceRepoPG) Update(ctx context.Context, inv *Invoice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET total_amount=$2, insurance_amount=$3, patient_amount=$4,
			status=$5, due_date=$6, updated_at=NOW()
		WHERE id=$1`,
		inv.ID, inv.TotalAmount, inv.InsuranceAmount, inv.PatientAmount, inv.Status, inv.DueDate)
	return err
}

func (r *invoiceRepoPG) UpdateTotals(ctx context.Context, id uuid.UUID, t Totals) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET total_amount=$2, insurance_amount=$3, patient_amount=$4, updated_at=NOW()
		WHERE id=$1`,
		id, t.TotalAmount, t.InsuranceAmount, t.PatientAmount)
	return err
}

func (r *invoiceRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE invoice SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	return err
}

func (r *invoiceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *invoiceRepoPG) List(ctx context.Context, f InvoiceFilter, limit, offset int) ([]*Invoice, int, error) {
	where := "1=1"
	args := []interface{}{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND i.patient_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND i.status = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM invoice i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`,
		invoiceSelect, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const paymentCols = `id, invoice_id, payment_date, amount, payment_method, transaction_reference, status, notes, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.PaymentDate, &p.Amount, &p.Method,
		&p.TransactionRef, &p.Status, &p.Notes, &p.CreatedAt)
	return &p, err
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment (id, invoice_id, payment_date, amount, payment_method, transaction_reference, status, notes)
		VALUES ($1,$2,NOW(),$3,$4,$5,$6,$7)`,
		p.ID, p.InvoiceID, p.Amount, p.Method, p.TransactionRef, p.Status, p.Notes)
	return err
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payment WHERE id = $1`, id))
}

func (r *paymentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM payment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepoPG) List(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	where := "1=1"
	args := []interface{}{}
	if invoiceID != nil {
		args = append(args, *invoiceID)
		where = "invoice_id = $1"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM payment WHERE %s ORDER BY payment_date DESC LIMIT $%d OFFSET $%d`,
		paymentCols, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *paymentRepoPG) SumPaidByInvoice(ctx context.Context, invoiceID uuid.UUID) (float64, error) {
	var sum float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payment WHERE invoice_id = $1 AND status = $2`,
		invoiceID, StatusPaid).Scan(&sum)
	return sum, err
}

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) ClaimRepository { return &claimRepoPG{pool: pool} }

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `id, invoice_id, policy_id, claim_amount, submission_date, claim_status, reimbursement_amount, denial_reason, created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.InvoiceID, &c.PolicyID, &c.ClaimAmount, &c.SubmissionDate,
		&c.Status, &c.ReimbursementAmount, &c.DenialReason, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_claim (id, invoice_id, policy_id, claim_amount, submission_date, claim_status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.InvoiceID, c.PolicyID, c.ClaimAmount, c.SubmissionDate, c.Status)
	return err
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM insurance_claim WHERE id = $1`, id))
}

func (r *claimRepoPG) Update(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_claim SET claim_status=$2, reimbursement_amount=$3, denial_reason=$4, updated_at=NOW()
		WHERE id=$1`,
		c.ID, c.Status, c.ReimbursementAmount, c.DenialReason)
	return err
}

func (r *claimRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_claim WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *claimRepoPG) List(ctx context.Context, limit, offset int) ([]*Claim, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM insurance_claim`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ic.id, ic.invoice_id, ic.policy_id, ic.claim_amount, ic.submission_date,
		       ic.claim_status, ic.reimbursement_amount, ic.denial_reason, ic.created_at, ic.updated_at,
		       COALESCE(i.total_amount, 0), COALESCE(i.insurance_amount, 0),
		       COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), '') AS patient_name
		  FROM insurance_claim ic
		  LEFT JOIN invoice i ON ic.invoice_id = i.id
		  LEFT JOIN patient p ON i.patient_id = p.id
		 ORDER BY ic.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var claims []*Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.ID, &c.InvoiceID, &c.PolicyID, &c.ClaimAmount, &c.SubmissionDate,
			&c.Status, &c.ReimbursementAmount, &c.DenialReason, &c.CreatedAt, &c.UpdatedAt,
			&c.InvoiceTotal, &c.InvoiceInsurance, &c.PatientName); err != nil {
			return nil, 0, err
		}
		claims = append(claims, &c)
	}
	return claims, total, rows.Err()
}
