package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/repository"
)

type usageRepository struct {
	db repository.DBTX
}

// NewUsageRepository creates a new usage metering repository
func NewUsageRepository(db repository.DBTX) repository.UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) WithTx(tx *sql.Tx) repository.UsageRepository {
	return &usageRepository{db: tx}
}

// Increment upserts the (user, period) row and returns the count after the
// increment.
func (r *usageRepository) Increment(ctx context.Context, userID int64, period string) (int, error) {
	query := `INSERT INTO usage_records (user_id, period, count, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, period) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, period, time.Now()); err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return r.Get(ctx, userID, period)
}

func (r *usageRepository) Get(ctx context.Context, userID int64, period string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count FROM usage_records WHERE user_id = ? AND period = ?`,
		userID, period).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}
	return count, nil
}

// DeleteBefore prunes usage rows for periods strictly before the given
// YYYY-MM key. Period keys sort lexicographically in date order.
func (r *usageRepository) DeleteBefore(ctx context.Context, period string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usage_records WHERE period < ?`, period)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage records: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
