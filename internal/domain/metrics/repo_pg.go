package metrics

import (
	"context"
	"time"

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

func (r *repoPG) Overview(ctx context.Context) (*Overview, error) {
	o := &Overview{AppointmentsToday: make(map[string]int)}
	c := r.conn(ctx)

	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&o.Patients); err != nil {
		return nil, err
	}

	rows, err := c.Query(ctx, `
		SELECT status, COUNT(*) FROM appointment
		WHERE appointment_date = CURRENT_DATE
		GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		o.AppointmentsToday[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := c.QueryRow(ctx, `
		SELECT COUNT(*) FROM staff
		WHERE role = 'Doctor' AND is_active`).Scan(&o.ActiveDoctors); err != nil {
		return nil, err
	}

	if err := c.QueryRow(ctx, `
		SELECT ROUND(COALESCE(AVG(coverage_percentage), 0))
		FROM insurance_policy WHERE is_active`).Scan(&o.AvgInsuranceCoverage); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx, `
		SELECT payment_date::date AS day, SUM(amount)
		FROM payment
		WHERE status = 'Paid' AND payment_date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY day
		ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	o.RevenueLast30Days = []RevenuePoint{}
	for rows.Next() {
		var day time.Time
		var amount float64
		if err := rows.Scan(&day, &amount); err != nil {
			return nil, err
		}
		o.RevenueLast30Days = append(o.RevenueLast30Days, RevenuePoint{
			Day:    day.Format("2006-01-02"),
			Amount: amount,
		})
	}
	return o, rows.Err()
}
