package main

import (
	"context"
	"fmt"

	"bizdir/internal/db"
	"bizdir/internal/seed"
	"bizdir/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Seeding roles...")
		if err := seed.SeedRoles(ctx, store.NewRoleRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}

		logrus.Info("Seeding countries...")
		if err := seed.SeedCountries(ctx, store.NewLocationRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed countries: %w", err)
		}

		logrus.Info("Seeding categories...")
		if err := seed.SeedCategories(ctx, store.NewCategoryRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		logrus.Info("Seed completed successfully")

		return nil
	},
}
