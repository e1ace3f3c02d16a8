package seed

import (
	"context"
	"fmt"

	"bizdir/internal/store"
	"bizdir/pkg/types"
)

var roles = []struct {
	Slug string
	Name string
}{
	{Slug: types.RoleAdmin, Name: "Administrator"},
	{Slug: types.RoleUser, Name: "User"},
}

// SeedRoles upserts the fixed role set. Role slugs are referenced by the
// access-control middleware, so this must run before any user registers.
func SeedRoles(ctx context.Context, repo *store.RoleRepository) error {
	for _, role := range roles {
		if err := repo.EnsureRole(ctx, role.Slug, role.Name); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Slug, err)
		}
	}

	fmt.Printf("Roles seeded: %d upserted\n", len(roles))
	return nil
}
