package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Log implements AssignmentLog with PostgreSQL. The log is append-only:
// fairness state lives here rather than in memory, so assignment counts
// converge across process restarts.
type Log struct {
	pool *pgxpool.Pool
}

// NewLog creates a new historical assignment log.
func NewLog(pool *pgxpool.Pool) *Log {
	return &Log{pool: pool}
}

// Compile-time check that Log implements AssignmentLog.
var _ AssignmentLog = (*Log)(nil)

// Record appends an assignment inside the distribution transaction.
func (l *Log) Record(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO distribution_log (lead_id, vendor_id, qualifier_id) VALUES ($1, $2, $3)`,
		leadID, vendorID, qualifierID,
	)
	if err != nil {
		return fmt.Errorf("record assignment: %w", err)
	}
	return nil
}

// StatsByVendor aggregates total assignments and last assignment time per vendor.
// Vendors with no history are absent from the returned map.
func (l *Log) StatsByVendor(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]VendorStats, error) {
	stats := make(map[uuid.UUID]VendorStats, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return stats, nil
	}

	rows, err := l.pool.Query(ctx, `
		SELECT vendor_id, COUNT(*), MAX(created_at)
		FROM distribution_log
		WHERE vendor_id = ANY($1)
		GROUP BY vendor_id`,
		vendorIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("assignment stats by vendor: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vendorID uuid.UUID
		var total int
		var last *time.Time
		if err := rows.Scan(&vendorID, &total, &last); err != nil {
			return nil, fmt.Errorf("scan assignment stats: %w", err)
		}
		stats[vendorID] = VendorStats{Total: total, LastAssignedAt: last}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate assignment stats: %w", rows.Err())
	}

	return stats, nil
}
