// Package repositories provides the PostgreSQL-backed implementations of the
// domain repository interfaces.  All queries are parameterised and every
// method accepts a context for cancellation; a method called with a context
// carrying an open transaction joins that transaction.
package repositories

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
)

// querier is the subset of pgx operations shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// withTx returns a context carrying the transaction.
func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom extracts the transaction from the context, if present.
func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// pick resolves the querier for the call: the context's transaction when one
// is open, the pool otherwise.
func pick(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return pool
}

// prefixColumns qualifies every column of a comma-separated list with a table
// alias, for use in joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// ─────────────────────────────────────────────────────────────────────────────
// Unit of work
// ─────────────────────────────────────────────────────────────────────────────

// TxManager implements the domain UnitOfWork over a pgx connection pool.
type TxManager struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewTxManager constructs a TxManager.
func NewTxManager(pool *pgxpool.Pool, log logging.Logger) *TxManager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TxManager{pool: pool, logger: log.Named("tx")}
}

// WithinTx runs fn inside one transaction.  Repository calls made with the
// context passed to fn join it; fn returning an error rolls everything back.
// A call made while a transaction is already open joins the outer one rather
// than nesting.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}
