package seed

import (
	"context"
	"fmt"

	"bizdir/internal/store"
	"bizdir/internal/utils"
	"bizdir/pkg/types"
)

// SeedCountries upserts the root countries of the location ladder, keyed by
// slug. States and below are managed through the admin screens.
func SeedCountries(ctx context.Context, repo *store.LocationRepository) error {
	countries := []types.Location{
		{Name: "India", Slug: "india", Type: types.LocationCountry, Code: utils.StringPtr("IN"), IsActive: true},
		{Name: "United States", Slug: "united-states", Type: types.LocationCountry, Code: utils.StringPtr("US"), IsActive: true},
		{Name: "United Kingdom", Slug: "united-kingdom", Type: types.LocationCountry, Code: utils.StringPtr("GB"), IsActive: true},
	}

	seeded := 0
	for _, country := range countries {
		existing, err := repo.LocationBySlug(ctx, country.Slug)
		if err != nil {
			return fmt.Errorf("failed to fetch location %s: %w", country.Slug, err)
		}

		if existing == nil {
			created := country
			if err := repo.Create(ctx, &created); err != nil {
				return fmt.Errorf("failed to create location %s: %w", country.Slug, err)
			}
			seeded++
			continue
		}

		existing.Name = country.Name
		existing.Code = country.Code
		if err := repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update location %s: %w", country.Slug, err)
		}
		seeded++
	}

	fmt.Printf("Countries seeded: %d upserted\n", seeded)
	return nil
}
