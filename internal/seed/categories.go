package seed

import (
	"context"
	"fmt"

	"bizdir/internal/store"
	"bizdir/internal/utils"
	"bizdir/pkg/types"
)

// SeedCategories syncs the starter category forest, keyed by slug:
// - Inserts categories that don't exist
// - Updates existing ones whose fields changed
// Rows removed from this list are left in place; admins own deletions.
func SeedCategories(ctx context.Context, repo *store.CategoryRepository) error {
	categories := []types.Category{
		{
			Name:        "Restaurants & Food",
			Slug:        "restaurants-food",
			Description: utils.StringPtr("Restaurants, cafes, bakeries, and food services"),
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Shopping & Retail",
			Slug:        "shopping-retail",
			Description: utils.StringPtr("Shops, markets, and retail stores"),
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Health & Medical",
			Slug:        "health-medical",
			Description: utils.StringPtr("Clinics, pharmacies, and wellness services"),
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Home Services",
			Slug:        "home-services",
			Description: utils.StringPtr("Repairs, cleaning, and maintenance"),
			SortOrder:   4,
			IsActive:    true,
		},
		{
			Name:        "Education & Training",
			Slug:        "education-training",
			Description: utils.StringPtr("Schools, tutors, and coaching centers"),
			SortOrder:   5,
			IsActive:    true,
		},
		{
			Name:        "Professional Services",
			Slug:        "professional-services",
			Description: utils.StringPtr("Legal, accounting, and consulting"),
			SortOrder:   6,
			IsActive:    true,
		},
		{
			Name:        "Automotive",
			Slug:        "automotive",
			Description: utils.StringPtr("Garages, dealerships, and spare parts"),
			SortOrder:   7,
			IsActive:    true,
		},
		{
			Name:        "Beauty & Personal Care",
			Slug:        "beauty-personal-care",
			Description: utils.StringPtr("Salons, spas, and grooming"),
			SortOrder:   8,
			IsActive:    true,
		},
	}

	seeded := 0
	for _, category := range categories {
		existing, err := repo.CategoryBySlug(ctx, category.Slug)
		if err != nil {
			return fmt.Errorf("failed to fetch category %s: %w", category.Slug, err)
		}

		if existing == nil {
			created := category
			if err := repo.Create(ctx, &created); err != nil {
				return fmt.Errorf("failed to create category %s: %w", category.Slug, err)
			}
			seeded++
			continue
		}

		existing.Name = category.Name
		existing.Description = category.Description
		existing.SortOrder = category.SortOrder
		if err := repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update category %s: %w", category.Slug, err)
		}
		seeded++
	}

	fmt.Printf("Categories seeded: %d upserted\n", seeded)
	return nil
}
