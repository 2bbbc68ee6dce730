package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type contextKey string

const connKey contextKey = "db_conn"

// Queryable is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// WithConn returns a context carrying a connection or transaction that
// repositories will use instead of their pool.
func WithConn(ctx context.Context, conn Queryable) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext returns the connection attached by WithConn, or nil.
func ConnFromContext(ctx context.Context) Queryable {
	if c, ok := ctx.Value(connKey).(Queryable); ok {
		return c
	}
	return nil
}
