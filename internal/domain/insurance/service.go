package insurance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
)

type Service struct {
	policies Repository
	auditor  *audit.BestEffort
}

func NewService(policies Repository, auditor *audit.BestEffort) *Service {
	return &Service{policies: policies, auditor: auditor}
}

func validate(p *Policy) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.ProviderName != nil && len(*p.ProviderName) > 25 {
		return fmt.Errorf("provider_name exceeds 25 characters")
	}
	if p.PolicyNumber != nil && len(*p.PolicyNumber) > 10 {
		return fmt.Errorf("policy_number exceeds 10 characters")
	}
	if p.CoveragePercentage != nil && (*p.CoveragePercentage < 0 || *p.CoveragePercentage > 100) {
		return fmt.Errorf("coverage_percentage must be between 0 and 100")
	}
	if p.Deductable != nil && *p.Deductable < 0 {
		return fmt.Errorf("deductable must not be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Policy) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.policies.Create(ctx, p); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", p.ID, map[string]any{"after": p})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return s.policies.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Policy) error {
	if err := validate(p); err != nil {
		return err
	}
	before, err := s.policies.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.policies.Update(ctx, p); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", p.ID, map[string]any{"before": before, "after": p})
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", id, map[string]any{"before": before})
	return nil
}

func (s *Service) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	return s.policies.List(ctx, patientID, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: "insurance_policy", EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
