// Package txpg is the reference pgx/v5 binding for txcore: a Connection
// that drives one pooled *pgxpool.Conn through begin/exec/commit/rollback,
// and a Heuristics implementation that classifies PostgreSQL SQLSTATE
// classes into the generic connection/transient split.
package txpg
