package staff

import (
	"time"

	"github.com/google/uuid"
)

// Staff maps to the staff table. PasswordHash is never serialized.
type Staff struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FirstName    *string    `db:"first_name" json:"first_name,omitempty"`
	LastName     *string    `db:"last_name" json:"last_name,omitempty"`
	Role         string     `db:"role" json:"role"`
	Speciality   *string    `db:"speciality" json:"speciality,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty"`
	BranchID     *uuid.UUID `db:"branch_id" json:"branch_id,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and audit entries.
func (s *Staff) FullName() string {
	first, last := "", ""
	if s.FirstName != nil {
		first = *s.FirstName
	}
	if s.LastName != nil {
		last = *s.LastName
	}
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Branch maps to the branch table.
type Branch struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"branch_name" json:"branch_name"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BranchAccess maps to the staff_branch_access table and grants a staff
// member a level of access at a branch.
type BranchAccess struct {
	ID          uuid.UUID `db:"id" json:"id"`
	StaffID     uuid.UUID `db:"staff_id" json:"staff_id"`
	BranchID    uuid.UUID `db:"branch_id" json:"branch_id"`
	AccessLevel string    `db:"access_level" json:"access_level"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	GrantedAt   time.Time `db:"granted_at" json:"granted_at"`

	// Joined display fields, populated by list queries.
	StaffName  string `db:"-" json:"staff_name,omitempty"`
	BranchName string `db:"-" json:"branch_name,omitempty"`
}
