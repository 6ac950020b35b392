package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
}

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	GetByName(ctx context.Context, name string) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Branch, int, error)
}

type BranchAccessRepository interface {
	Create(ctx context.Context, a *BranchAccess) error
	GetByID(ctx context.Context, id uuid.UUID) (*BranchAccess, error)
	Update(ctx context.Context, a *BranchAccess) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List filters by staff or branch when the corresponding ID is non-nil.
	List(ctx context.Context, staffID, branchID *uuid.UUID, limit, offset int) ([]*BranchAccess, int, error)
}
