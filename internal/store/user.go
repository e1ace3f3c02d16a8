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
	userTableName     = "bizdir.users"
	roleTableName     = "bizdir.roles"
	userRoleTableName = "bizdir.user_roles"
)

var (
	userColumns = utils.StructTagValues(types.User{})
	roleColumns = utils.StructTagValues(types.Role{})
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) UserByID(ctx context.Context, id int64) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"email": email}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user-by-email query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(userTableName).
		Where(sq.Eq{"email": email}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate email-exists query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return count > 0, nil
}

func (r *UserRepository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	builder := psql().
		Select("COUNT(*)").
		From(userTableName).
		Where(sq.Eq{"slug": slug}).
		Where(notDeleted(""))
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate user slug-exists query: %w", err)
	}

	var count int64
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check user slug existence: %w", err)
	}

	return count > 0, nil
}

// Create inserts the user and fills in the generated ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	userMap := utils.StructToMap(user)
	delete(userMap, "id")

	query, args, err := psql().
		Insert(userTableName).
		SetMap(userMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &user.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *types.User) error {
	user.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(utils.StructToMap(user)).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Roles returns the role slugs assigned to a user via the assignment table.
func (r *UserRepository) Roles(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := psql().
		Select("r.slug").
		From(roleTableName + " r").
		Join(userRoleTableName + " ur ON ur.role_id = r.id").
		Where(sq.Eq{"ur.user_id": userID}).
		OrderBy("r.slug ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user roles query: %w", err)
	}

	var slugs []string
	err = pgxscan.Select(ctx, r.pool, &slugs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user roles: %w", err)
	}

	return slugs, nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	query, args, err := psql().
		Insert(userRoleTableName).
		Columns("user_id", "role_id", "created_at").
		Values(userID, roleID, time.Now()).
		Suffix("ON CONFLICT (user_id, role_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate assign role query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) RoleBySlug(ctx context.Context, slug string) (*types.Role, error) {
	query, args, err := psql().
		Select(roleColumns...).
		From(roleTableName).
		Where(sq.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role query: %w", err)
	}

	var role types.Role
	err = pgxscan.Get(ctx, r.pool, &role, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}

	return &role, nil
}

// EnsureRole upserts a role by slug, used by the seed command.
func (r *RoleRepository) EnsureRole(ctx context.Context, slug, name string) error {
	query, args, err := psql().
		Insert(roleTableName).
		Columns("slug", "name").
		Values(slug, name).
		Suffix("ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate ensure role query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to ensure role: %w", err)
	}

	return nil
}
