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

const suggestionTableName = "bizdir.category_suggestions"

var suggestionColumns = utils.StructTagValues(types.CategorySuggestion{})

type SuggestionRepository struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepository(pool *pgxpool.Pool) *SuggestionRepository {
	return &SuggestionRepository{pool: pool}
}

func (r *SuggestionRepository) detailColumns() []string {
	return append(
		utils.PrefixSliceOfStrings("cs", suggestionColumns),
		"u.name AS user_name",
		"u.email AS user_email",
	)
}

func (r *SuggestionRepository) AllByStatus(ctx context.Context, status types.SuggestionStatus) ([]*types.CategorySuggestionDetail, error) {
	query, args, err := psql().
		Select(r.detailColumns()...).
		From(suggestionTableName + " cs").
		LeftJoin(userTableName + " u ON cs.user_id = u.id").
		Where(sq.Eq{"cs.status": status}).
		OrderBy("cs.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions query: %w", err)
	}

	var suggestions []*types.CategorySuggestionDetail
	err = pgxscan.Select(ctx, r.pool, &suggestions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}

	return suggestions, nil
}

func (r *SuggestionRepository) SuggestionByID(ctx context.Context, id int64) (*types.CategorySuggestionDetail, error) {
	query, args, err := psql().
		Select(r.detailColumns()...).
		From(suggestionTableName + " cs").
		LeftJoin(userTableName + " u ON cs.user_id = u.id").
		Where(sq.Eq{"cs.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion query: %w", err)
	}

	var suggestion types.CategorySuggestionDetail
	err = pgxscan.Get(ctx, r.pool, &suggestion, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch suggestion: %w", err)
	}

	return &suggestion, nil
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *types.CategorySuggestion) error {
	now := time.Now()
	suggestion.CreatedAt = now
	suggestion.UpdatedAt = now
	if suggestion.Status == "" {
		suggestion.Status = types.SuggestionPending
	}

	suggestionMap := utils.StructToMap(suggestion)
	delete(suggestionMap, "id")

	query, args, err := psql().
		Insert(suggestionTableName).
		SetMap(suggestionMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert suggestion query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &suggestion.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}

	return nil
}

// UpdateStatus records the admin decision. Suggestions never revert.
func (r *SuggestionRepository) UpdateStatus(ctx context.Context, id int64, status types.SuggestionStatus, approvedBy int64) error {
	query, args, err := psql().
		Update(suggestionTableName).
		Set("status", status).
		Set("approved_by", approvedBy).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update suggestion query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update suggestion status: %w", err)
	}

	return nil
}
