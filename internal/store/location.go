package store

import (
	"context"
	"fmt"
	"time"

	"bizdir/internal/utils"
	"bizdir/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const locationTableName = "bizdir.locations"

var locationColumns = utils.StructTagValues(types.Location{})

// typeLadderOrder sorts rows top-of-ladder first so BuildTree sees parents
// in display order. Postgres has no enum ordering for a text column, so the
// ladder is spelled out.
const typeLadderOrder = "array_position(ARRAY['country','state','district','taluka','village','area','locality'], type)"

type LocationRepository struct {
	pool *pgxpool.Pool
}

func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func (r *LocationRepository) All(ctx context.Context, activeOnly bool) ([]*types.Location, error) {
	builder := psql().
		Select(locationColumns...).
		From(locationTableName).
		Where(notDeleted("")).
		OrderBy(typeLadderOrder, "name ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate locations query: %w", err)
	}

	var locations []*types.Location
	err = pgxscan.Select(ctx, r.pool, &locations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}

	return locations, nil
}

// Roots returns the countries.
func (r *LocationRepository) Roots(ctx context.Context, activeOnly bool) ([]*types.Location, error) {
	builder := psql().
		Select(locationColumns...).
		From(locationTableName).
		Where(sq.Eq{"parent_id": nil}).
		Where(sq.Eq{"type": types.LocationCountry}).
		Where(notDeleted("")).
		OrderBy("name ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate location roots query: %w", err)
	}

	var locations []*types.Location
	err = pgxscan.Select(ctx, r.pool, &locations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location roots: %w", err)
	}

	return locations, nil
}

func (r *LocationRepository) Children(ctx context.Context, parentID int64, activeOnly bool) ([]*types.Location, error) {
	builder := psql().
		Select(locationColumns...).
		From(locationTableName).
		Where(sq.Eq{"parent_id": parentID}).
		Where(notDeleted("")).
		OrderBy("name ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate location children query: %w", err)
	}

	var locations []*types.Location
	err = pgxscan.Select(ctx, r.pool, &locations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location children: %w", err)
	}

	return locations, nil
}

func (r *LocationRepository) LocationByID(ctx context.Context, id int64) (*types.Location, error) {
	query, args, err := psql().
		Select(locationColumns...).
		From(locationTableName).
		Where(sq.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate location query: %w", err)
	}

	var location types.Location
	err = pgxscan.Get(ctx, r.pool, &location, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}

	return &location, nil
}

func (r *LocationRepository) LocationBySlug(ctx context.Context, slug string) (*types.Location, error) {
	query, args, err := psql().
		Select(locationColumns...).
		From(locationTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate location query: %w", err)
	}

	var location types.Location
	err = pgxscan.Get(ctx, r.pool, &location, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch location by slug: %w", err)
	}

	return &location, nil
}

func (r *LocationRepository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	builder := psql().
		Select("COUNT(*)").
		From(locationTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted(""))
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate location slug-exists query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check location slug existence: %w", err)
	}

	return count > 0, nil
}

func (r *LocationRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(locationTableName).
		Where(sq.Eq{"parent_id": id}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate location has-children query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to count location children: %w", err)
	}

	return count > 0, nil
}

func (r *LocationRepository) Create(ctx context.Context, location *types.Location) error {
	now := time.Now()
	location.CreatedAt = now
	location.UpdatedAt = now

	locationMap := utils.StructToMap(location)
	delete(locationMap, "id")

	query, args, err := psql().
		Insert(locationTableName).
		SetMap(locationMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert location query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &location.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}

	return nil
}

func (r *LocationRepository) Update(ctx context.Context, location *types.Location) error {
	location.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(locationTableName).
		SetMap(utils.StructToMap(location)).
		Where(sq.Eq{"id": location.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update location query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	return nil
}

func (r *LocationRepository) SoftDelete(ctx context.Context, id int64) error {
	query, args, err := psql().
		Update(locationTableName).
		Set("deleted_at", time.Now()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete location query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	return nil
}

func (r *LocationRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query, args, err := psql().
		Update(locationTableName).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate toggle location query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to toggle location: %w", err)
	}

	return nil
}
