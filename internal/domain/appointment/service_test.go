package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	clone := *a
	m.appts[a.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if a, ok := m.appts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *a
	m.appts[a.ID] = &clone
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var matched []*Appointment
	for _, a := range m.appts {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.BranchID != nil && a.BranchID != *f.BranchID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		matched = append(matched, a)
	}
	return matched, len(matched), nil
}

type mockHistoryRepo struct {
	entries []*History
}

func (m *mockHistoryRepo) Create(_ context.Context, h *History) error {
	h.ID = uuid.New()
	h.ChangedAt = time.Now()
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*History, error) {
	var matched []*History
	for _, h := range m.entries {
		if h.AppointmentID == appointmentID {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

// passthroughRunner stands in for a pool-backed transaction runner.
type passthroughRunner struct{}

func (passthroughRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockHistoryRepo) {
	repo := newMockRepo()
	history := &mockHistoryRepo{}
	return NewService(repo, history, passthroughRunner{}, nil), repo, history
}

func validAppointment() *Appointment {
	return &Appointment{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		BranchID:        uuid.New(),
		AppointmentDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:30",
	}
}

func TestCreate_DefaultsToScheduled(t *testing.T) {
	svc, _, _ := newTestService()

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected Scheduled, got %s", a.Status)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*Appointment)
	}{
		{"missing patient", func(a *Appointment) { a.PatientID = uuid.Nil }},
		{"missing doctor", func(a *Appointment) { a.DoctorID = uuid.Nil }},
		{"missing branch", func(a *Appointment) { a.BranchID = uuid.Nil }},
		{"missing date", func(a *Appointment) { a.AppointmentDate = time.Time{} }},
		{"bad time", func(a *Appointment) { a.AppointmentTime = "9:30am" }},
		{"bad status", func(a *Appointment) { a.Status = "Pending" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := validAppointment()
			tc.mutate(a)
			if err := svc.Create(context.Background(), a); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreate_AcceptsSecondsInTime(t *testing.T) {
	svc, _, _ := newTestService()

	a := validAppointment()
	a.AppointmentTime = "14:15:30"
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestUpdate_StatusChangeWritesHistory(t *testing.T) {
	svc, _, history := newTestService()

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reason := "patient discharged"
	modifier := uuid.New()
	updated := *a
	updated.Status = StatusCompleted
	if err := svc.Update(context.Background(), &updated, &reason, &modifier); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history.entries))
	}
	h := history.entries[0]
	if h.PreviousStatus != StatusScheduled || h.NewStatus != StatusCompleted {
		t.Errorf("unexpected transition %s -> %s", h.PreviousStatus, h.NewStatus)
	}
	if h.Reason == nil || *h.Reason != reason {
		t.Error("reason not recorded")
	}
	if h.ModifiedBy == nil || *h.ModifiedBy != modifier {
		t.Error("modified_by not recorded")
	}
}

func TestUpdate_SameStatusSkipsHistory(t *testing.T) {
	svc, _, history := newTestService()

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated := *a
	updated.AppointmentTime = "11:00"
	if err := svc.Update(context.Background(), &updated, nil, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(history.entries) != 0 {
		t.Fatalf("expected no history entries, got %d", len(history.entries))
	}
}

func TestList_FiltersByStatusAndDoctor(t *testing.T) {
	svc, _, _ := newTestService()

	doctor := uuid.New()
	for _, status := range []string{StatusScheduled, StatusCompleted} {
		a := validAppointment()
		a.DoctorID = doctor
		a.Status = status
		if err := svc.Create(context.Background(), a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	other := validAppointment()
	if err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, total, err := svc.List(context.Background(), Filter{DoctorID: &doctor, Status: StatusCompleted}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 match, got %d", total)
	}

	if _, _, err := svc.List(context.Background(), Filter{Status: "Bogus"}, 20, 0); err == nil {
		t.Fatal("expected error for invalid status filter")
	}
}

func TestHistory_UnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.History(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown appointment")
	}
}
