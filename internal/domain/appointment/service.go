package appointment

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/platform/audit"
	"github.com/hospitalos/hms/internal/platform/auth"
	"github.com/hospitalos/hms/internal/platform/db"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

var timeOfDay = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

type Service struct {
	appts   Repository
	history HistoryRepository
	tx      db.TxRunner
	auditor *audit.BestEffort
}

func NewService(appts Repository, history HistoryRepository, tx db.TxRunner, auditor *audit.BestEffort) *Service {
	return &Service{appts: appts, history: history, tx: tx, auditor: auditor}
}

func validate(a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.BranchID == uuid.Nil {
		return fmt.Errorf("branch_id is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if !timeOfDay.MatchString(a.AppointmentTime) {
		return fmt.Errorf("appointment_time must be HH:MM or HH:MM:SS")
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := validate(a); err != nil {
		return err
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return err
	}
	s.recordAudit(ctx, "create", a.ID, map[string]any{"after": a})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// Update writes the appointment and, when the status changed, a history row
// recording the transition. Both happen in one transaction.
func (s *Service) Update(ctx context.Context, a *Appointment, reason *string, modifiedBy *uuid.UUID) error {
	if err := validate(a); err != nil {
		return err
	}
	var before *Appointment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.appts.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		if err := s.appts.Update(ctx, a); err != nil {
			return err
		}
		if a.Status != before.Status {
			h := &History{
				AppointmentID:  a.ID,
				PreviousStatus: before.Status,
				NewStatus:      a.Status,
				Reason:         reason,
				ModifiedBy:     modifiedBy,
			}
			if h.ModifiedBy == nil {
				if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
					h.ModifiedBy = &userID
				}
			}
			if err := s.history.Create(ctx, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "update", a.ID, map[string]any{"before": before, "after": a})
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appts.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", id, map[string]any{"before": before})
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", f.Status)
	}
	return s.appts.List(ctx, f, limit, offset)
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*History, error) {
	if _, err := s.appts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByAppointment(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, action string, id uuid.UUID, details map[string]any) {
	entry := audit.Entry{Action: action, Entity: "appointment", EntityID: &id, Details: details}
	if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
		entry.UserID = &userID
	}
	s.auditor.Record(ctx, entry)
}
