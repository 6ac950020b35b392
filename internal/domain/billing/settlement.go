package billing

import (
	"math"

	"github.com/hospitalos/hms/internal/domain/insurance"
)

// Totals is the monetary split of an invoice. InsuranceAmount plus
// PatientAmount always reconciles to TotalAmount to the cent.
type Totals struct {
	TotalAmount     float64 `json:"total_amount"`
	InsuranceAmount float64 `json:"insurance_amount"`
	PatientAmount   float64 `json:"patient_amount"`
}

// round2 rounds half-up at the cent boundary.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// SplitTotal divides a total between insurer and patient under the given
// policy. A nil policy means the patient is uninsured and owes everything.
// The insurance share is computed on the deductible-reduced amount and
// clamped so it can never exceed the total; the patient share is the exact
// remainder rather than an independently rounded figure, so the two always
// sum back to the total.
func SplitTotal(total float64, policy *insurance.Policy) Totals {
	if total < 0 {
		total = 0
	}
	t := Totals{TotalAmount: round2(total), PatientAmount: round2(total)}
	if policy == nil {
		return t
	}

	coverage, deduct := 0.0, 0.0
	if policy.CoveragePercentage != nil {
		coverage = *policy.CoveragePercentage
	}
	if policy.Deductable != nil {
		deduct = *policy.Deductable
	}

	eligible := math.Max(0, t.TotalAmount-deduct)
	ins := round2(eligible * coverage / 100)
	if ins > t.TotalAmount {
		ins = t.TotalAmount
	}
	t.InsuranceAmount = ins
	t.PatientAmount = round2(t.TotalAmount - ins)
	return t
}

// SettledStatus derives an invoice status from its payment ledger. An
// invoice counts as paid once cumulative Paid payments cover the patient's
// own share; the insurer's share is tracked through claims, not here.
// Cancelled is terminal and never recomputed.
func SettledStatus(current string, patientAmount, paidSum float64) string {
	if current == StatusCancelled {
		return StatusCancelled
	}
	if paidSum >= patientAmount {
		return StatusPaid
	}
	return StatusPending
}
