package treatment

import (
	"context"

	"github.com/google/uuid"
)

type CatalogueRepository interface {
	Create(ctx context.Context, e *CatalogueEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*CatalogueEntry, error)
	Update(ctx context.Context, e *CatalogueEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns active entries only unless includeInactive is set.
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*CatalogueEntry, int, error)
}

type Repository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Treatment, int, error)
	// SumCostByAppointment totals treatment costs for an appointment. An
	// appointment without treatments sums to zero.
	SumCostByAppointment(ctx context.Context, appointmentID uuid.UUID) (float64, error)
}
