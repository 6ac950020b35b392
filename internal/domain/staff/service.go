package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
)

const bcryptCost = 10

type Service struct {
	staff    Repository
	branches BranchRepository
	access   BranchAccessRepository
	auditor  *audit.BestEffort
}

func NewService(staff Repository, branches BranchRepository, access BranchAccessRepository, auditor *audit.BestEffort) *Service {
	return &Service{staff: staff, branches: branches, access: access, auditor: auditor}
}

var validRoles = map[string]bool{
	"Admin": true, "Doctor": true, "Nurse": true, "Receptionist": true, "Other": true,
}

var validAccessLevels = map[string]bool{
	"Read": true, "Write": true, "Admin": true, "Owner": true,
}

// -- Staff --

func (s *Service) Create(ctx context.Context, m *Staff, password string) error {
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	m.PasswordHash = string(hash)

	if err := s.staff.Create(ctx, m); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "staff", m.ID, map[string]any{"after": m})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// Update persists staff fields; a non-empty password is re-hashed, an empty
// one keeps the stored hash.
func (s *Service) Update(ctx context.Context, m *Staff, password string) error {
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	before, err := s.staff.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}

	if password != "" {
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		m.PasswordHash = string(hash)
	} else {
		m.PasswordHash = before.PasswordHash
	}

	if err := s.staff.Update(ctx, m); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "staff", m.ID, map[string]any{"before": before, "after": m})
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.staff.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "staff", id, map[string]any{"before": before})
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}

// -- Branch --

func (s *Service) CreateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return fmt.Errorf("branch_name is required")
	}
	if err := s.branches.Create(ctx, b); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "branch", b.ID, map[string]any{"after": b})
	return nil
}

func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return s.branches.GetByID(ctx, id)
}

func (s *Service) UpdateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return fmt.Errorf("branch_name is required")
	}
	before, err := s.branches.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	if err := s.branches.Update(ctx, b); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "branch", b.ID, map[string]any{"before": before, "after": b})
	return nil
}

func (s *Service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	before, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.branches.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "branch", id, map[string]any{"before": before})
	return nil
}

func (s *Service) ListBranches(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	return s.branches.List(ctx, limit, offset)
}

// -- BranchAccess --

func (s *Service) GrantAccess(ctx context.Context, a *BranchAccess) error {
	if a.StaffID == uuid.Nil {
		return fmt.Errorf("staff_id is required")
	}
	if a.BranchID == uuid.Nil {
		return fmt.Errorf("branch_id is required")
	}
	if !validAccessLevels[a.AccessLevel] {
		return fmt.Errorf("invalid access_level: %s", a.AccessLevel)
	}
	if err := s.access.Create(ctx, a); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "staff_branch_access", a.ID, map[string]any{"after": a})
	return nil
}

func (s *Service) UpdateAccess(ctx context.Context, a *BranchAccess) error {
	if !validAccessLevels[a.AccessLevel] {
		return fmt.Errorf("invalid access_level: %s", a.AccessLevel)
	}
	before, err := s.access.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if err := s.access.Update(ctx, a); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "staff_branch_access", a.ID, map[string]any{"before": before, "after": a})
	return nil
}

func (s *Service) RevokeAccess(ctx context.Context, id uuid.UUID) error {
	before, err := s.access.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "staff_branch_access", id, map[string]any{"before": before})
	return nil
}

func (s *Service) GetAccess(ctx context.Context, id uuid.UUID) (*BranchAccess, error) {
	return s.access.GetByID(ctx, id)
}

func (s *Service) ListAccess(ctx context.Context, staffID, branchID *uuid.UUID, limit, offset int) ([]*BranchAccess, int, error) {
	return s.access.List(ctx, staffID, branchID, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action, entity string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: entity, EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
