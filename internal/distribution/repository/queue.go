package repository

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

const (
	queueColumns          = "lead_id, attempts, next_vendor_id, status, error_message, created_at, updated_at"
	queueEntryNotFoundMsg = "distribution queue entry not found"
	maxErrorMessageLen    = 1000
)

// Queue implements QueueStore with PostgreSQL.
type Queue struct {
	pool *pgxpool.Pool
}

// NewQueue creates a new distribution ledger store.
func NewQueue(pool *pgxpool.Pool) *Queue {
	return &Queue{pool: pool}
}

// Compile-time check that Queue implements QueueStore.
var _ QueueStore = (*Queue)(nil)

// Upsert creates the ledger entry if absent, otherwise resets it to pending
// and clears any prior error.
func (q *Queue) Upsert(ctx context.Context, leadID uuid.UUID) (QueueEntry, error) {
	query := `
		INSERT INTO distribution_queue (lead_id)
		VALUES ($1)
		ON CONFLICT (lead_id) DO UPDATE
		SET status = 'pending', error_message = NULL, updated_at = now()
		RETURNING ` + queueColumns

	entry, err := scanQueueEntry(q.pool.QueryRow(ctx, query, leadID))
	if err != nil {
		return QueueEntry{}, fmt.Errorf("upsert queue entry: %w", err)
	}
	return entry, nil
}

// EnsureAndLock guarantees the entry exists and locks it with SELECT FOR UPDATE.
func (q *Queue) EnsureAndLock(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) (QueueEntry, error) {
	_, err := tx.Exec(ctx,
		`INSERT INTO distribution_queue (lead_id) VALUES ($1) ON CONFLICT (lead_id) DO NOTHING`,
		leadID,
	)
	if err != nil {
		return QueueEntry{}, fmt.Errorf("ensure queue entry: %w", err)
	}

	query := `SELECT ` + queueColumns + ` FROM distribution_queue WHERE lead_id = $1 FOR UPDATE`
	entry, err := scanQueueEntry(tx.QueryRow(ctx, query, leadID))
	if err != nil {
		return QueueEntry{}, fmt.Errorf("lock queue entry: %w", err)
	}
	return entry, nil
}

// MarkDistributed records a successful attempt inside the transaction.
func (q *Queue) MarkDistributed(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE distribution_queue
		SET status = 'distributed',
		    attempts = attempts + 1,
		    next_vendor_id = $2,
		    error_message = NULL,
		    updated_at = now()
		WHERE lead_id = $1`,
		leadID, vendorID,
	)
	if err != nil {
		return fmt.Errorf("mark queue entry distributed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(queueEntryNotFoundMsg)
	}
	return nil
}

// MarkError records a failed attempt on the pool, outside any transaction,
// so attempt history survives the distribution rollback.
func (q *Queue) MarkError(ctx context.Context, leadID uuid.UUID, message string) error {
	message = truncateMessage(message, maxErrorMessageLen)

	_, err := q.pool.Exec(ctx, `
		INSERT INTO distribution_queue (lead_id, attempts, status, error_message)
		VALUES ($1, 1, 'error', $2)
		ON CONFLICT (lead_id) DO UPDATE
		SET status = 'error',
		    attempts = distribution_queue.attempts + 1,
		    error_message = EXCLUDED.error_message,
		    updated_at = now()`,
		leadID, message,
	)
	if err != nil {
		return fmt.Errorf("mark queue entry error: %w", err)
	}
	return nil
}

// truncateMessage cuts the message to at most max bytes without splitting a
// rune; error texts are Portuguese and carry multi-byte characters.
func truncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Get retrieves the ledger entry for a lead.
func (q *Queue) Get(ctx context.Context, leadID uuid.UUID) (QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM distribution_queue WHERE lead_id = $1`
	entry, err := scanQueueEntry(q.pool.QueryRow(ctx, query, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QueueEntry{}, apperr.NotFound(queueEntryNotFoundMsg)
		}
		return QueueEntry{}, fmt.Errorf("get queue entry: %w", err)
	}
	return entry, nil
}

func scanQueueEntry(row pgx.Row) (QueueEntry, error) {
	var entry QueueEntry
	var status string
	err := row.Scan(
		&entry.LeadID, &entry.Attempts, &entry.NextVendorID, &status,
		&entry.ErrorMessage, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return QueueEntry{}, err
	}
	entry.Status = QueueStatus(status)
	return entry, nil
}
