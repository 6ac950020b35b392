package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/hospitalos/hms/internal/platform/auth"
)

// CredentialAdapter exposes the staff table to the auth layer.
type CredentialAdapter struct {
	staff Repository
}

func NewCredentialAdapter(staff Repository) *CredentialAdapter {
	return &CredentialAdapter{staff: staff}
}

func (a *CredentialAdapter) AccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	s, err := a.staff.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toAccount(s), nil
}

func (a *CredentialAdapter) AccountByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	s, err := a.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccount(s), nil
}

func toAccount(s *Staff) *auth.Account {
	account := &auth.Account{
		ID:           s.ID,
		Name:         s.FullName(),
		Role:         s.Role,
		BranchID:     s.BranchID,
		PasswordHash: s.PasswordHash,
		Status:       "Inactive",
	}
	if s.Email != nil {
		account.Email = *s.Email
	}
	if s.IsActive {
		account.Status = "Active"
	}
	return account
}
