package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QueueStatus is the lifecycle state of a distribution queue entry.
type QueueStatus string

const (
	StatusPending     QueueStatus = "pending"
	StatusDistributed QueueStatus = "distributed"
	StatusError       QueueStatus = "error"
)

// QueueEntry is the per-lead ledger row tracking distribution attempts.
// One row per lead ever submitted to the distributor; never deleted except
// by lead-deletion cascade.
type QueueEntry struct {
	LeadID       uuid.UUID   `db:"lead_id"`
	Attempts     int         `db:"attempts"`
	NextVendorID *uuid.UUID  `db:"next_vendor_id"`
	Status       QueueStatus `db:"status"`
	ErrorMessage *string     `db:"error_message"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// VendorStats is a vendor's accumulated assignment history, the fairness memory
// the selector ranks on.
type VendorStats struct {
	Total          int
	LastAssignedAt *time.Time
}

// QueueStore manages the per-lead distribution ledger.
type QueueStore interface {
	// Upsert creates the ledger entry if absent, otherwise resets it to
	// pending and clears any prior error. Idempotent.
	Upsert(ctx context.Context, leadID uuid.UUID) (QueueEntry, error)
	// EnsureAndLock guarantees the entry exists and takes an exclusive row
	// lock on it inside the given transaction. This lock is what serializes
	// concurrent distributions of the same lead.
	EnsureAndLock(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) (QueueEntry, error)
	// MarkDistributed records a successful attempt inside the transaction.
	MarkDistributed(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID) error
	// MarkError records a failed attempt. It deliberately runs outside any
	// transaction so the error survives the distribution rollback.
	MarkError(ctx context.Context, leadID uuid.UUID, message string) error
	// Get retrieves the ledger entry for operator inspection.
	Get(ctx context.Context, leadID uuid.UUID) (QueueEntry, error)
}

// AssignmentLog is the append-only historical record of every assignment,
// aggregated for fairness accounting.
type AssignmentLog interface {
	Record(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) error
	StatsByVendor(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]VendorStats, error)
}
