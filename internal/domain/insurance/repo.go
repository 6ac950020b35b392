package insurance

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Policy, int, error)

	// BestForPatient returns the patient's preferred policy among those that
	// are active or not yet expired: active ones first, then latest expiry,
	// then most recently created. pgx.ErrNoRows when no policy qualifies.
	BestForPatient(ctx context.Context, patientID uuid.UUID) (*Policy, error)
}
