// Package store holds the Postgres repositories. Queries are built with
// squirrel, scanned with pgxscan, and column lists derive from the db tags
// on pkg/types structs.
package store

import (
	sq "github.com/Masterminds/squirrel"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// notDeleted is the soft-delete filter every read applies unless a caller
// explicitly wants tombstoned rows.
func notDeleted(prefix string) sq.Sqlizer {
	col := "deleted_at"
	if prefix != "" {
		col = prefix + ".deleted_at"
	}
	return sq.Eq{col: nil}
}
