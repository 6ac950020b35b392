package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/domain/insurance"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	UpdateTotals(ctx context.Context, id uuid.UUID, t Totals) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f InvoiceFilter, limit, offset int) ([]*Invoice, int, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error)
	// SumPaidByInvoice totals Paid payments against an invoice.
	SumPaidByInvoice(ctx context.Context, invoiceID uuid.UUID) (float64, error)
}

type ClaimRepository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Claim, int, error)
}

// PolicySource yields the governing insurance policy for a patient.
// Satisfied by the insurance repository.
type PolicySource interface {
	BestForPatient(ctx context.Context, patientID uuid.UUID) (*insurance.Policy, error)
}

// TreatmentCosts sums stored treatment costs for an appointment.
// Satisfied by the treatment repository.
type TreatmentCosts interface {
	SumCostByAppointment(ctx context.Context, appointmentID uuid.UUID) (float64, error)
}
