package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(dsn string) *PgRepository {
	db := sqlx.MustConnect("postgres", dsn)

	// 3 replicas x 15 conns stays under the default max_connections=100.
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

// Migrate creates the tables when they do not exist yet.
func (r *PgRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	zap.L().Info("Database schema is up to date")
	return nil
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

func (r *PgRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PgRepository) GetPoolStats() map[string]any {
	stats := r.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// withTx runs fn in a transaction, committing when it returns nil and rolling
// back on error or panic.
func (r *PgRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				zap.L().Error("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
