package staff

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type seedStaff struct {
	email     string
	role      string
	firstName string
	lastName  string
	password  string
}

var defaultStaff = []seedStaff{
	{email: "admin@hospitalos.local", role: "Admin", firstName: "System", lastName: "Admin", password: "admin"},
	{email: "dr.maya@hospitalos.local", role: "Doctor", firstName: "Maya", lastName: "Singh", password: "admin"},
	{email: "dr.noah@hospitalos.local", role: "Doctor", firstName: "Noah", lastName: "Kim", password: "admin"},
	{email: "nurse.zara@hospitalos.local", role: "Nurse", firstName: "Zara", lastName: "Lopez", password: "admin"},
}

// EnsureDefaults seeds the Central branch and the default accounts so a fresh
// install has a working Admin login. Existing rows are left untouched, so the
// routine is safe to run on every startup.
func EnsureDefaults(ctx context.Context, branches BranchRepository, staff Repository, logger zerolog.Logger) error {
	branch, err := branches.GetByName(ctx, "Central")
	if err != nil {
		location := "HQ"
		phone := ""
		branch = &Branch{Name: "Central", Location: &location, Phone: &phone}
		if err := branches.Create(ctx, branch); err != nil {
			return fmt.Errorf("seed Central branch: %w", err)
		}
		logger.Info().Str("branch_id", branch.ID.String()).Msg("seeded Central branch")
	}

	for _, seed := range defaultStaff {
		if _, err := staff.GetByEmail(ctx, seed.email); err == nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		email := seed.email
		first := seed.firstName
		last := seed.lastName
		member := &Staff{
			FirstName:    &first,
			LastName:     &last,
			Role:         seed.role,
			Email:        &email,
			BranchID:     &branch.ID,
			IsActive:     true,
			PasswordHash: string(hash),
		}
		if err := staff.Create(ctx, member); err != nil {
			return fmt.Errorf("seed staff %s: %w", seed.email, err)
		}
		logger.Info().Str("email", seed.email).Str("role", seed.role).Msg("seeded staff account")
	}

	return nil
}
