package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
)

type Service struct {
	patients Repository
	auditor  *audit.BestEffort
}

func NewService(patients Repository, auditor *audit.BestEffort) *Service {
	return &Service{patients: patients, auditor: auditor}
}

var validGenders = map[string]bool{
	"Male": true, "Female": true, "Other": true,
}

func validate(p *Patient) error {
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", p.ID, map[string]any{"after": p})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	before, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", p.ID, map[string]any{"before": before, "after": p})
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", id, map[string]any{"before": before})
	return nil
}

func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, q, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: "patient", EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
