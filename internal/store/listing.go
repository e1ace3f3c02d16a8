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

const (
	listingTableName      = "bizdir.listings"
	subscriptionTableName = "bizdir.subscriptions"
)

var (
	listingColumns = utils.StructTagValues(types.Listing{})

	// listing columns prefixed for the joined detail queries
	listingDetailColumns = append(
		utils.PrefixSliceOfStrings("l", listingColumns),
		"c.name AS category_name",
		"loc.name AS location_name",
	)
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) detailBuilder() sq.SelectBuilder {
	return psql().
		Select(listingDetailColumns...).
		From(listingTableName + " l").
		LeftJoin(categoryTableName + " c ON l.category_id = c.id AND c.deleted_at IS NULL").
		LeftJoin(locationTableName + " loc ON l.location_id = loc.id AND loc.deleted_at IS NULL").
		Where(notDeleted("l"))
}

// Approved lists publicly visible listings, newest first.
func (r *ListingRepository) Approved(ctx context.Context, limit, offset uint64) ([]*types.ListingDetail, error) {
	query, args, err := r.detailBuilder().
		Where(sq.Eq{"l.status": types.ListingApproved}).
		OrderBy("l.created_at DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate approved listings query: %w", err)
	}

	var listings []*types.ListingDetail
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved listings: %w", err)
	}

	return listings, nil
}

// BySlugPublic resolves an approved listing for the public detail page.
func (r *ListingRepository) BySlugPublic(ctx context.Context, slug string) (*types.ListingDetail, error) {
	query, args, err := r.detailBuilder().
		Where(sq.Eq{"l.slug": slug}).
		Where(sq.Eq{"l.status": types.ListingApproved}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public listing query: %w", err)
	}

	var listing types.ListingDetail
	err = pgxscan.Get(ctx, r.pool, &listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch public listing: %w", err)
	}

	return &listing, nil
}

// ByID resolves a listing regardless of status, for owner and admin paths.
func (r *ListingRepository) ByID(ctx context.Context, id int64) (*types.ListingDetail, error) {
	query, args, err := r.detailBuilder().
		Where(sq.Eq{"l.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing query: %w", err)
	}

	var listing types.ListingDetail
	err = pgxscan.Get(ctx, r.pool, &listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	return &listing, nil
}

func (r *ListingRepository) ByUserID(ctx context.Context, userID int64) ([]*types.ListingDetail, error) {
	query, args, err := r.detailBuilder().
		Where(sq.Eq{"l.user_id": userID}).
		OrderBy("l.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user listings query: %w", err)
	}

	var listings []*types.ListingDetail
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user listings: %w", err)
	}

	return listings, nil
}

// PendingApprovals returns the admin approval queue, oldest submission
// first, with the owner's identity joined in.
func (r *ListingRepository) PendingApprovals(ctx context.Context) ([]*types.ListingDetail, error) {
	columns := append(
		utils.PrefixSliceOfStrings("l", listingColumns),
		"c.name AS category_name",
		"loc.name AS location_name",
		"u.name AS user_name",
		"u.email AS user_email",
	)

	query, args, err := psql().
		Select(columns...).
		From(listingTableName + " l").
		Join(userTableName + " u ON l.user_id = u.id AND u.deleted_at IS NULL").
		LeftJoin(categoryTableName + " c ON l.category_id = c.id AND c.deleted_at IS NULL").
		LeftJoin(locationTableName + " loc ON l.location_id = loc.id AND loc.deleted_at IS NULL").
		Where(notDeleted("l")).
		Where(sq.Eq{"l.status": types.ListingPending}).
		OrderBy("l.updated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending approvals query: %w", err)
	}

	var listings []*types.ListingDetail
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending approvals: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	builder := psql().
		Select("COUNT(*)").
		From(listingTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted(""))
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate listing slug-exists query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check listing slug existence: %w", err)
	}

	return count > 0, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *types.Listing) error {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	listingMap := utils.StructToMap(listing)
	delete(listingMap, "id")

	query, args, err := psql().
		Insert(listingTableName).
		SetMap(listingMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert listing query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &listing.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *types.Listing) error {
	listing.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(listingTableName).
		SetMap(utils.StructToMap(listing)).
		Where(sq.Eq{"id": listing.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update listing query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	return nil
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id int64, status types.ListingStatus) error {
	query, args, err := psql().
		Update(listingTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update listing status query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}

	return nil
}

func (r *ListingRepository) IncrementViewCount(ctx context.Context, id int64) error {
	query, args, err := psql().
		Update(listingTableName).
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate view count query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

func (r *ListingRepository) SoftDelete(ctx context.Context, id int64) error {
	query, args, err := psql().
		Update(listingTableName).
		Set("deleted_at", time.Now()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete listing query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	return nil
}

// ExpireForLapsedSubscriptions flips approved listings to expired for every
// owner whose subscription has lapsed. Invoked opportunistically on listing
// list reads; the Subscription side only reports state, this applies it.
func (r *ListingRepository) ExpireForLapsedSubscriptions(ctx context.Context) (int64, error) {
	query := `
		UPDATE ` + listingTableName + ` l
		SET status = $1, updated_at = now()
		FROM ` + subscriptionTableName + ` s
		WHERE s.user_id = l.user_id
		  AND s.status = $2
		  AND s.deleted_at IS NULL
		  AND l.status = $3
		  AND l.deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		types.ListingExpired, types.SubscriptionExpired, types.ListingApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to expire listings for lapsed subscriptions: %w", err)
	}

	return tag.RowsAffected(), nil
}

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// UserHasActive reports whether the user holds a live subscription. This is
// the Subscription Service contract the listing workflow consumes.
func (r *SubscriptionRepository) UserHasActive(ctx context.Context, userID int64) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(subscriptionTableName).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": types.SubscriptionActive}).
		Where(notDeleted("")).
		Where(sq.Or{sq.Eq{"ends_at": nil}, sq.Expr("ends_at > now()")}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate subscription query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	return count > 0, nil
}
