package store

import (
	"context"
	"fmt"

	"bizdir/internal/utils"
	"bizdir/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionTableName = "bizdir.sessions"

var sessionColumns = utils.StructTagValues(types.Session{})

// SessionStore persists sessions in Postgres so login survives restarts.
// It satisfies the session package's Store interface.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	query, args, err := psql().
		Select(sessionColumns...).
		From(sessionTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session query: %w", err)
	}

	var sess types.Session
	err = pgxscan.Get(ctx, s.pool, &sess, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *types.Session) error {
	query, args, err := psql().
		Insert(sessionTableName).
		Columns(sessionColumns...).
		Values(
			sess.ID,
			sess.UserID,
			sess.UserName,
			sess.UserEmail,
			sess.Roles,
			sess.CSRFToken,
			sess.CreatedAt,
			sess.ExpiresAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			user_email = EXCLUDED.user_email,
			roles = EXCLUDED.roles,
			csrf_token = EXCLUDED.csrf_token,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate session upsert query: %w", err)
	}

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(sessionTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate session delete query: %w", err)
	}

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired reaps stale rows. Intended to be called periodically from
// the serve loop.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := psql().
		Delete(sessionTableName).
		Where(sq.Expr("expires_at < NOW()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate expired session delete query: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
