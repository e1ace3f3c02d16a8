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

const categoryTableName = "bizdir.categories"

var categoryColumns = utils.StructTagValues(types.Category{})

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// All returns non-deleted categories ordered by the display key that
// taxonomy.BuildTree preserves as child order.
func (r *CategoryRepository) All(ctx context.Context, activeOnly bool) ([]*types.Category, error) {
	builder := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(notDeleted("")).
		OrderBy("sort_order ASC", "name ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	var categories []*types.Category
	err = pgxscan.Select(ctx, r.pool, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) CategoryByID(ctx context.Context, id int64) (*types.Category, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(sq.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category query: %w", err)
	}

	var category types.Category
	err = pgxscan.Get(ctx, r.pool, &category, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepository) CategoryBySlug(ctx context.Context, slug string) (*types.Category, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category-by-slug query: %w", err)
	}

	var category types.Category
	err = pgxscan.Get(ctx, r.pool, &category, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch category by slug: %w", err)
	}

	return &category, nil
}

// SlugExists probes for a live row carrying slug. It is the store side of
// taxonomy.MakeSlugUnique; excludeID skips the row being updated.
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	builder := psql().
		Select("COUNT(*)").
		From(categoryTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted(""))
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate category slug-exists query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug existence: %w", err)
	}

	return count > 0, nil
}

func (r *CategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(categoryTableName).
		Where(sq.Eq{"parent_id": id}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate has-children query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to count category children: %w", err)
	}

	return count > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *types.Category) error {
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	categoryMap := utils.StructToMap(category)
	delete(categoryMap, "id")

	query, args, err := psql().
		Insert(categoryTableName).
		SetMap(categoryMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert category query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &category.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *types.Category) error {
	category.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(categoryTableName).
		SetMap(utils.StructToMap(category)).
		Where(sq.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update category query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// SoftDelete tombstones a category. The delete-with-children check lives in
// the controller so the failure is a structured 400, not a store error.
func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64) error {
	query, args, err := psql().
		Update(categoryTableName).
		Set("deleted_at", time.Now()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete category query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query, args, err := psql().
		Update(categoryTableName).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate toggle category query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to toggle category: %w", err)
	}

	return nil
}
