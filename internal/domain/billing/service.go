package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
	"github.com/hospitalos/hms/internal/platform/db"
)

var validMethods = map[string]bool{
	MethodCash: true, MethodCard: true, MethodInsurance: true, MethodOnline: true,
}

var validStatuses = map[string]bool{
	StatusPending: true, StatusPaid: true, StatusCancelled: true,
}

var validClaimStatuses = map[string]bool{
	ClaimSubmitted: true, ClaimApproved: true, ClaimRejected: true,
}

type Service struct {
	invoices   InvoiceRepository
	payments   PaymentRepository
	claims     ClaimRepository
	policies   PolicySource
	treatments TreatmentCosts
	tx         db.TxRunner
	auditor    *audit.BestEffort
}

func NewService(invoices InvoiceRepository, payments PaymentRepository, claims ClaimRepository,
	policies PolicySource, treatments TreatmentCosts, tx db.TxRunner, auditor *audit.BestEffort) *Service {
	return &Service{
		invoices:   invoices,
		payments:   payments,
		claims:     claims,
		policies:   policies,
		treatments: treatments,
		tx:         tx,
		auditor:    auditor,
	}
}

// ComputeTotals resolves an invoice's monetary split. The total comes from
// the explicit override when given, otherwise from the appointment's summed
// treatment costs, otherwise zero. The patient's governing policy, if any,
// determines the insurance share. Missing data is a valid zero case, never
// an error.
func (s *Service) ComputeTotals(ctx context.Context, patientID uuid.UUID, appointmentID *uuid.UUID, explicitTotal *float64) (Totals, error) {
	var total float64
	switch {
	case explicitTotal != nil:
		total = *explicitTotal
	case appointmentID != nil:
		sum, err := s.treatments.SumCostByAppointment(ctx, *appointmentID)
		if err != nil {
			return Totals{}, fmt.Errorf("sum treatment costs: %w", err)
		}
		total = sum
	}

	policy, err := s.policies.BestForPatient(ctx, patientID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return Totals{}, fmt.Errorf("resolve policy: %w", err)
		}
		policy = nil
	}
	return SplitTotal(total, policy), nil
}

// reconcile recomputes and persists the invoice status from its ledger. It
// runs inside the caller's transaction so the status change commits or rolls
// back together with the mutation that triggered it.
func (s *Service) reconcile(ctx context.Context, invoiceID uuid.UUID) error {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	paid, err := s.payments.SumPaidByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	next := SettledStatus(inv.Status, inv.PatientAmount, paid)
	if next == inv.Status {
		return nil
	}
	return s.invoices.UpdateStatus(ctx, invoiceID, next)
}

// -- Invoices --

func (s *Service) CreateInvoice(ctx context.Context, patientID uuid.UUID, appointmentID *uuid.UUID, explicitTotal *float64) (*Invoice, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if explicitTotal != nil && *explicitTotal < 0 {
		return nil, fmt.Errorf("total_amount must not be negative")
	}

	inv := &Invoice{PatientID: patientID, AppointmentID: appointmentID, Status: StatusPending}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		totals, err := s.ComputeTotals(ctx, patientID, appointmentID, explicitTotal)
		if err != nil {
			return err
		}
		inv.TotalAmount = totals.TotalAmount
		inv.InsuranceAmount = totals.InsuranceAmount
		inv.PatientAmount = totals.PatientAmount
		return s.invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "create", "invoice", inv.ID, map[string]any{"after": inv})
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// Recalculate re-derives the totals triple from the invoice's current
// patient, appointment and stored total, and overwrites the monetary fields.
// Status is left untouched. Calling it twice with no data change yields
// identical results.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	var after *Invoice
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		totals, err := s.ComputeTotals(ctx, inv.PatientID, inv.AppointmentID, &inv.TotalAmount)
		if err != nil {
			return err
		}
		if err := s.invoices.UpdateTotals(ctx, id, totals); err != nil {
			return err
		}
		after, err = s.invoices.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "update", "invoice", id, map[string]any{"after": after})
	return after, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	if !validStatuses[inv.Status] {
		return fmt.Errorf("invalid status: %s", inv.Status)
	}
	if inv.TotalAmount < 0 || inv.InsuranceAmount < 0 || inv.PatientAmount < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	before, err := s.invoices.GetByID(ctx, inv.ID)
	if err != nil {
		return err
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "invoice", inv.ID, map[string]any{"before": before, "after": inv})
	return nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	before, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.invoices.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "invoice", id, map[string]any{"before": before})
	return nil
}

func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter, limit, offset int) ([]*Invoice, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", f.Status)
	}
	return s.invoices.List(ctx, f, limit, offset)
}

// -- Payments --

// CreatePayment records a payment and reconciles the invoice status in the
// same transaction.
func (s *Service) CreatePayment(ctx context.Context, p *Payment) error {
	if p.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if !validMethods[p.Method] {
		return fmt.Errorf("invalid payment_method: %s", p.Method)
	}
	if p.Status == "" {
		p.Status = StatusPaid
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.TransactionRef != nil && len(*p.TransactionRef) > 25 {
		return fmt.Errorf("transaction_reference exceeds 25 characters")
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.invoices.GetByID(ctx, p.InvoiceID); err != nil {
			return fmt.Errorf("invoice not found: %w", err)
		}
		if err := s.payments.Create(ctx, p); err != nil {
			return err
		}
		return s.reconcile(ctx, p.InvoiceID)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "payment", p.ID, map[string]any{"after": p})
	return nil
}

// DeletePayment removes a payment and reconciles the invoice status in the
// same transaction.
func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	var before *Payment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.payments.Delete(ctx, id); err != nil {
			return err
		}
		// The invoice may already be gone when payments are being cleaned
		// up after an invoice delete.
		if err := s.reconcile(ctx, before.InvoiceID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "payment", id, map[string]any{"before": before})
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.payments.List(ctx, invoiceID, limit, offset)
}

// -- Claims --

// CreateClaim submits a claim. A nil claim amount defaults to the invoice's
// insurance share.
func (s *Service) CreateClaim(ctx context.Context, c *Claim, claimAmount *float64) error {
	if claimAmount != nil && *claimAmount < 0 {
		return fmt.Errorf("claim_amount must not be negative")
	}
	c.Status = ClaimSubmitted
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.GetByID(ctx, c.InvoiceID)
		if err != nil {
			return fmt.Errorf("invoice not found: %w", err)
		}
		if claimAmount != nil {
			c.ClaimAmount = *claimAmount
		} else {
			c.ClaimAmount = inv.InsuranceAmount
		}
		return s.claims.Create(ctx, c)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "insurance_claim", c.ID, map[string]any{"after": c})
	return nil
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.claims.GetByID(ctx, id)
}

// UpdateClaim persists claim changes. A transition into Approved with a
// reimbursement amount synthesizes an Insurance payment against the claim's
// invoice, tagged CLAIM-<id> for traceability, and reconciles the invoice
// status. Everything commits or rolls back together. An approval without a
// reimbursement amount updates the claim only.
func (s *Service) UpdateClaim(ctx context.Context, c *Claim) error {
	if !validClaimStatuses[c.Status] {
		return fmt.Errorf("invalid claim_status: %s", c.Status)
	}
	if c.ReimbursementAmount != nil && *c.ReimbursementAmount < 0 {
		return fmt.Errorf("reimbursement_amount must not be negative")
	}

	var before *Claim
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.claims.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		if err := s.claims.Update(ctx, c); err != nil {
			return err
		}
		if c.Status == ClaimApproved && before.Status != ClaimApproved && c.ReimbursementAmount != nil {
			return s.onClaimApproved(ctx, c)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "insurance_claim", c.ID, map[string]any{"before": before, "after": c})
	return nil
}

func (s *Service) onClaimApproved(ctx context.Context, c *Claim) error {
	ref := fmt.Sprintf("CLAIM-%s", c.ID)
	notes := "Auto-created from approved insurance claim"
	payment := &Payment{
		InvoiceID:      c.InvoiceID,
		Amount:         *c.ReimbursementAmount,
		Method:         MethodInsurance,
		TransactionRef: &ref,
		Status:         StatusPaid,
		Notes:          &notes,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return err
	}
	return s.reconcile(ctx, c.InvoiceID)
}

func (s *Service) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	before, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.claims.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "insurance_claim", id, map[string]any{"before": before})
	return nil
}

func (s *Service) ListClaims(ctx context.Context, limit, offset int) ([]*Claim, int, error) {
	return s.claims.List(ctx, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action, entity string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: entity, EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
