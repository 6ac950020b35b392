package treatment

import (
	"time"

	"github.com/google/uuid"
)

// CatalogueEntry maps to the treatment_catalogue table and defines a billable
// treatment type with its standard cost and coding.
type CatalogueEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"treatment_name" json:"treatment_name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	ICD10Code    *string   `db:"icd10_code" json:"icd10_code,omitempty"`
	CPTCode      *string   `db:"cpt_code" json:"cpt_code,omitempty"`
	StandardCost *float64  `db:"standard_cost" json:"standard_cost,omitempty"`
	Category     *string   `db:"category" json:"category,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Treatment maps to the treatment table. Cost is resolved from the catalogue
// standard cost when the caller does not supply one, so stored rows always
// carry a concrete amount.
type Treatment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	CatalogueID   uuid.UUID `db:"treatment_type_id" json:"treatment_type_id"`
	Cost          float64   `db:"cost" json:"cost"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	TreatmentName string `db:"-" json:"treatment_name,omitempty"`
}
