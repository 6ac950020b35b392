package insurance

import (
	"time"

	"github.com/google/uuid"
)

// Policy maps to the insurance_policy table. Coverage and deductible drive
// the invoice settlement split, so a patient's most relevant policy is the
// active one with the latest expiry.
type Policy struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderName       *string    `db:"provider_name" json:"provider_name,omitempty"`
	PolicyNumber       *string    `db:"policy_number" json:"policy_number,omitempty"`
	CoveragePercentage *float64   `db:"coverage_percentage" json:"coverage_percentage,omitempty"`
	Deductable         *float64   `db:"deductable" json:"deductable,omitempty"`
	ExpiryDate         *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
}
