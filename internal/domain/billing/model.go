package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "Pending"
	StatusPaid      = "Paid"
	StatusCancelled = "Cancelled"
)

const (
	MethodCash      = "Cash"
	MethodCard      = "Card"
	MethodInsurance = "Insurance"
	MethodOnline    = "Online"
)

const (
	ClaimSubmitted = "Submitted"
	ClaimApproved  = "Approved"
	ClaimRejected  = "Rejected"
)

// Invoice maps to the invoice table. The three monetary fields are always a
// consistent Totals triple; status follows the payment ledger.
type Invoice struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID   *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	TotalAmount     float64    `db:"total_amount" json:"total_amount"`
	InsuranceAmount float64    `db:"insurance_amount" json:"insurance_amount"`
	PatientAmount   float64    `db:"patient_amount" json:"patient_amount"`
	Status          string     `db:"status" json:"status"`
	DueDate         *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// Payment maps to the payment table.
type Payment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	InvoiceID      uuid.UUID `db:"invoice_id" json:"invoice_id"`
	PaymentDate    time.Time `db:"payment_date" json:"payment_date"`
	Amount         float64   `db:"amount" json:"amount"`
	Method         string    `db:"payment_method" json:"payment_method"`
	TransactionRef *string   `db:"transaction_reference" json:"transaction_reference,omitempty"`
	Status         string    `db:"status" json:"status"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Claim maps to the insurance_claim table. Approving a claim with a
// reimbursement amount synthesizes an Insurance payment on the invoice.
type Claim struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	InvoiceID           uuid.UUID  `db:"invoice_id" json:"invoice_id"`
	PolicyID            *uuid.UUID `db:"policy_id" json:"policy_id,omitempty"`
	ClaimAmount         float64    `db:"claim_amount" json:"claim_amount"`
	SubmissionDate      *time.Time `db:"submission_date" json:"submission_date,omitempty"`
	Status              string     `db:"claim_status" json:"claim_status"`
	ReimbursementAmount *float64   `db:"reimbursement_amount" json:"reimbursement_amount,omitempty"`
	DenialReason        *string    `db:"denial_reason" json:"denial_reason,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`

	InvoiceTotal     float64 `db:"-" json:"invoice_total,omitempty"`
	InvoiceInsurance float64 `db:"-" json:"invoice_insurance,omitempty"`
	PatientName      string  `db:"-" json:"patient_name,omitempty"`
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	PatientID *uuid.UUID
	Status    string
}
