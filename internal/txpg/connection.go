package txpg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AEATech/txcore/pkg/txcore"
)

// PoolConnection is the reference txcore.Connection backed by a
// *pgxpool.Pool. Each call to BeginTransactionWithOptions acquires a fresh
// *pgxpool.Conn if one is not already held; Close releases whatever
// connection is currently held back to the pool and forces a brand new
// acquisition on the next Begin, which is how it satisfies the
// free-reconnect and Connection-kind retry paths.
//
// A PoolConnection is not safe for concurrent use; txcore.TransactionManager
// already guarantees exclusive ownership for the duration of one Run call.
type PoolConnection struct {
	pool *pgxpool.Pool

	conn *pgxpool.Conn
	tx   pgx.Tx
}

// NewPoolConnection constructs a PoolConnection over pool. Panics if pool is
// nil.
func NewPoolConnection(pool *pgxpool.Pool) *PoolConnection {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &PoolConnection{pool: pool}
}

func (c *PoolConnection) BeginTransactionWithOptions(ctx context.Context, opts txcore.TxOptions) error {
	if c.tx != nil {
		return fmt.Errorf("txpg: a transaction is already open on this connection")
	}

	if c.conn == nil {
		conn, err := c.pool.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("txpg: acquiring pooled connection: %w", err)
		}
		c.conn = conn
	}

	txOpts := pgx.TxOptions{IsoLevel: isolationLevel(opts.IsolationLevel)}
	tx, err := c.conn.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("txpg: beginning transaction: %w", wrapDiagnostics(err))
	}
	c.tx = tx
	return nil
}

func (c *PoolConnection) ExecuteQuery(ctx context.Context, q txcore.Query) (int64, error) {
	if c.tx == nil {
		return 0, fmt.Errorf("txpg: no transaction is open")
	}
	tag, err := c.tx.Exec(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, fmt.Errorf("txpg: executing query: %w", wrapDiagnostics(err))
	}
	return tag.RowsAffected(), nil
}

func (c *PoolConnection) Commit(ctx context.Context) error {
	if c.tx == nil {
		return fmt.Errorf("txpg: no transaction is open")
	}
	err := c.tx.Commit(ctx)
	c.tx = nil
	if err != nil {
		return fmt.Errorf("txpg: committing transaction: %w", wrapDiagnostics(err))
	}
	return nil
}

func (c *PoolConnection) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback(ctx)
	c.tx = nil
	if err != nil {
		return fmt.Errorf("txpg: rolling back transaction: %w", err)
	}
	return nil
}

// Close releases the currently held pooled connection, if any, and forgets
// it; the next BeginTransactionWithOptions call acquires a new one. It is
// safe to call with no connection held and safe to call more than once.
func (c *PoolConnection) Close() error {
	c.tx = nil
	if c.conn == nil {
		return nil
	}
	c.conn.Release()
	c.conn = nil
	return nil
}

func isolationLevel(level txcore.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case txcore.IsolationReadUncommitted:
		return pgx.ReadUncommitted
	case txcore.IsolationReadCommitted:
		return pgx.ReadCommitted
	case txcore.IsolationRepeatableRead:
		return pgx.RepeatableRead
	case txcore.IsolationSerializable:
		return pgx.Serializable
	default:
		return ""
	}
}
