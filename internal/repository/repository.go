package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, letting the
// same SQL helpers run inside and outside transactions.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// inTx runs fn inside a single transaction, committing on success and rolling
// back on error or panic.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// setAssociations replaces the child set of a join table so it becomes
// exactly ids: stale links are removed, missing ones inserted.
func setAssociations(ctx context.Context, db DB, table, parentCol, childCol, parentID string, ids []string) error {
	deleteStmt := fmt.Sprintf(`DELETE FROM %s WHERE %s=$1`, table, parentCol)
	if _, err := db.Exec(ctx, deleteStmt, parentID); err != nil {
		return err
	}
	insertStmt := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1,$2)`, table, parentCol, childCol)
	for _, id := range ids {
		if _, err := db.Exec(ctx, insertStmt, parentID, id); err != nil {
			return err
		}
	}
	return nil
}
