package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Appointment maps to the appointment table. The display name fields are
// joined in by list and get queries and never written back.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	BranchID        uuid.UUID `db:"branch_id" json:"branch_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
	BranchName  string `db:"-" json:"branch_name,omitempty"`
}

// History records a status transition on an appointment.
type History struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	AppointmentID  uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PreviousStatus string     `db:"previous_status" json:"previous_status"`
	NewStatus      string     `db:"new_status" json:"new_status"`
	Reason         *string    `db:"reason" json:"reason,omitempty"`
	ModifiedBy     *uuid.UUID `db:"modified_by" json:"modified_by,omitempty"`
	ChangedAt      time.Time  `db:"changed_at" json:"changed_at"`
}

// Filter narrows appointment listings.
type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	BranchID  *uuid.UUID
	Status    string
}
