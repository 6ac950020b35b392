package treatment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
)

type Service struct {
	catalogue  CatalogueRepository
	treatments Repository
	auditor    *audit.BestEffort
}

func NewService(catalogue CatalogueRepository, treatments Repository, auditor *audit.BestEffort) *Service {
	return &Service{catalogue: catalogue, treatments: treatments, auditor: auditor}
}

func validateEntry(e *CatalogueEntry) error {
	if e.Name == "" {
		return fmt.Errorf("treatment_name is required")
	}
	if len(e.Name) > 25 {
		return fmt.Errorf("treatment_name exceeds 25 characters")
	}
	if e.ICD10Code != nil && len(*e.ICD10Code) > 7 {
		return fmt.Errorf("icd10_code exceeds 7 characters")
	}
	if e.CPTCode != nil && len(*e.CPTCode) > 5 {
		return fmt.Errorf("cpt_code exceeds 5 characters")
	}
	if e.StandardCost != nil && *e.StandardCost < 0 {
		return fmt.Errorf("standard_cost must not be negative")
	}
	if e.Category != nil && len(*e.Category) > 25 {
		return fmt.Errorf("category exceeds 25 characters")
	}
	return nil
}

func (s *Service) CreateEntry(ctx context.Context, e *CatalogueEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	if err := s.catalogue.Create(ctx, e); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "treatment_catalogue", e.ID, map[string]any{"after": e})
	return nil
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*CatalogueEntry, error) {
	return s.catalogue.GetByID(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, e *CatalogueEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	before, err := s.catalogue.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.catalogue.Update(ctx, e); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "treatment_catalogue", e.ID, map[string]any{"before": before, "after": e})
	return nil
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	before, err := s.catalogue.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.catalogue.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "treatment_catalogue", id, map[string]any{"before": before})
	return nil
}

func (s *Service) ListEntries(ctx context.Context, includeInactive bool, limit, offset int) ([]*CatalogueEntry, int, error) {
	return s.catalogue.List(ctx, includeInactive, limit, offset)
}

// Create stores a treatment. A nil cost resolves to the catalogue standard
// cost at insert time, so the stored row always has a concrete amount even if
// the catalogue price changes later.
func (s *Service) Create(ctx context.Context, t *Treatment, cost *float64) error {
	if t.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointment_id is required")
	}
	if t.CatalogueID == uuid.Nil {
		return fmt.Errorf("treatment_type_id is required")
	}
	switch {
	case cost != nil:
		if *cost < 0 {
			return fmt.Errorf("cost must not be negative")
		}
		t.Cost = *cost
	default:
		entry, err := s.catalogue.GetByID(ctx, t.CatalogueID)
		if err != nil {
			return fmt.Errorf("resolve catalogue entry: %w", err)
		}
		if entry.StandardCost != nil {
			t.Cost = *entry.StandardCost
		}
	}
	if err := s.treatments.Create(ctx, t); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", "treatment", t.ID, map[string]any{"after": t})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return s.treatments.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, t *Treatment) error {
	if t.Cost < 0 {
		return fmt.Errorf("cost must not be negative")
	}
	before, err := s.treatments.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if err := s.treatments.Update(ctx, t); err != nil {
		return err
	}
	s.recordAudit(ctx, "update", "treatment", t.ID, map[string]any{"before": before, "after": t})
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.treatments.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", "treatment", id, map[string]any{"before": before})
	return nil
}

func (s *Service) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Treatment, int, error) {
	return s.treatments.List(ctx, appointmentID, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action, entity string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: entity, EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
