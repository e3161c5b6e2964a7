package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/internal/handoffs/domain"
	"salesdesk_backend/platform/apperr"
)

const (
	handoffNotFoundMessage = "handoff not found"

	handoffColumns = `id, lead_id, qualifier_id, vendor_id, notes, urgency, status, sla_deadline,
		accepted_at, rejection_reason, first_contact_at, quality_score, feedback, created_at, updated_at`

	detailsColumns = `h.id, h.lead_id, h.qualifier_id, h.vendor_id, h.notes, h.urgency, h.status, h.sla_deadline,
		h.accepted_at, h.rejection_reason, h.first_contact_at, h.quality_score, h.feedback, h.created_at, h.updated_at,
		l.name AS lead_name, v.name AS vendor_name`

	detailsFrom = `FROM handoffs h
		JOIN leads l ON l.id = h.lead_id
		JOIN vendors v ON v.id = h.vendor_id`

	urgencyOrder = `CASE h.urgency WHEN 'alta' THEN 0 WHEN 'media' THEN 1 ELSE 2 END`
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new handoff repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a new pending handoff.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Handoff, error) {
	query := `
		INSERT INTO handoffs (lead_id, qualifier_id, vendor_id, notes, urgency, sla_deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + handoffColumns

	h, err := scanHandoff(r.pool.QueryRow(ctx, query,
		params.LeadID, params.QualifierID, params.VendorID,
		params.Notes, string(params.Urgency), params.SLADeadline,
	))
	if err != nil {
		return Handoff{}, fmt.Errorf("create handoff: %w", err)
	}
	return h, nil
}

// GetByID retrieves a handoff by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Handoff, error) {
	query := `SELECT ` + handoffColumns + ` FROM handoffs WHERE id = $1`
	h, err := scanHandoff(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Handoff{}, apperr.NotFound(handoffNotFoundMessage)
		}
		return Handoff{}, fmt.Errorf("get handoff by id: %w", err)
	}
	return h, nil
}

// Accept transitions pending → accepted iff the acting vendor owns the record.
func (r *Repo) Accept(ctx context.Context, id, vendorID uuid.UUID, at time.Time) (Handoff, bool, error) {
	query := `
		UPDATE handoffs
		SET status = 'accepted', accepted_at = $3, updated_at = now()
		WHERE id = $1 AND vendor_id = $2 AND status = 'pending'
		RETURNING ` + handoffColumns

	h, err := scanHandoff(r.pool.QueryRow(ctx, query, id, vendorID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Handoff{}, false, nil
		}
		return Handoff{}, false, fmt.Errorf("accept handoff: %w", err)
	}
	return h, true, nil
}

// Reject transitions pending → rejected iff the acting vendor owns the record.
func (r *Repo) Reject(ctx context.Context, id, vendorID uuid.UUID, reason string) (Handoff, bool, error) {
	query := `
		UPDATE handoffs
		SET status = 'rejected', rejection_reason = $3, updated_at = now()
		WHERE id = $1 AND vendor_id = $2 AND status = 'pending'
		RETURNING ` + handoffColumns

	h, err := scanHandoff(r.pool.QueryRow(ctx, query, id, vendorID, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Handoff{}, false, nil
		}
		return Handoff{}, false, fmt.Errorf("reject handoff: %w", err)
	}
	return h, true, nil
}

// SetFirstContact stamps first contact. Idempotent: re-invoking overwrites the
// timestamp; only the vendor-ownership check gates the write.
func (r *Repo) SetFirstContact(ctx context.Context, id, vendorID uuid.UUID, at time.Time) (Handoff, bool, error) {
	query := `
		UPDATE handoffs
		SET first_contact_at = $3, updated_at = now()
		WHERE id = $1 AND vendor_id = $2
		RETURNING ` + handoffColumns

	h, err := scanHandoff(r.pool.QueryRow(ctx, query, id, vendorID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Handoff{}, false, nil
		}
		return Handoff{}, false, fmt.Errorf("set first contact: %w", err)
	}
	return h, true, nil
}

// SetFeedback stores the quality score and structured feedback payload.
// Feedback only applies to accepted handoffs; pending or rejected ones come
// back false like any other non-actionable mutation.
func (r *Repo) SetFeedback(ctx context.Context, id, vendorID uuid.UUID, score int, feedback json.RawMessage) (Handoff, bool, error) {
	query := `
		UPDATE handoffs
		SET quality_score = $3, feedback = $4, updated_at = now()
		WHERE id = $1 AND vendor_id = $2 AND status = 'accepted'
		RETURNING ` + handoffColumns

	h, err := scanHandoff(r.pool.QueryRow(ctx, query, id, vendorID, score, feedback))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Handoff{}, false, nil
		}
		return Handoff{}, false, fmt.Errorf("set feedback: %w", err)
	}
	return h, true, nil
}

// ListPendingByVendor returns a vendor's pending handoffs ordered by urgency
// then by the soonest SLA deadline.
func (r *Repo) ListPendingByVendor(ctx context.Context, vendorID uuid.UUID) ([]Details, error) {
	query := `SELECT ` + detailsColumns + ` ` + detailsFrom + `
		WHERE h.vendor_id = $1 AND h.status = 'pending'
		ORDER BY ` + urgencyOrder + `, h.sla_deadline ASC`

	rows, err := r.pool.Query(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list pending handoffs: %w", err)
	}
	defer rows.Close()

	return scanDetailsRows(rows)
}

// ListOverdue returns accepted handoffs whose SLA deadline has passed without
// a recorded first contact: the escalation worklist.
func (r *Repo) ListOverdue(ctx context.Context, now time.Time) ([]Details, error) {
	query := `SELECT ` + detailsColumns + ` ` + detailsFrom + `
		WHERE h.status = 'accepted' AND h.first_contact_at IS NULL AND h.sla_deadline < $1
		ORDER BY h.sla_deadline ASC`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue handoffs: %w", err)
	}
	defer rows.Close()

	return scanDetailsRows(rows)
}

// Details retrieves a handoff with joined display names.
func (r *Repo) Details(ctx context.Context, id uuid.UUID) (Details, error) {
	query := `SELECT ` + detailsColumns + ` ` + detailsFrom + ` WHERE h.id = $1`

	d, err := scanDetails(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Details{}, apperr.NotFound(handoffNotFoundMessage)
		}
		return Details{}, fmt.Errorf("get handoff details: %w", err)
	}
	return d, nil
}

// ListByQualifier returns a qualifier's handoffs, optionally filtered by status.
func (r *Repo) ListByQualifier(ctx context.Context, qualifierID uuid.UUID, status *domain.Status) ([]Details, error) {
	query := `SELECT ` + detailsColumns + ` ` + detailsFrom + `
		WHERE h.qualifier_id = $1 AND ($2::text IS NULL OR h.status = $2)
		ORDER BY h.created_at DESC`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.pool.Query(ctx, query, qualifierID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("list handoffs by qualifier: %w", err)
	}
	defer rows.Close()

	return scanDetailsRows(rows)
}

// ResponseStatsSince computes the mean minutes between creation and first
// contact for the vendor's handoffs in the window.
func (r *Repo) ResponseStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (ResponseStats, error) {
	var stats ResponseStats
	err := r.pool.QueryRow(ctx, `
		SELECT AVG(EXTRACT(EPOCH FROM (first_contact_at - created_at)) / 60)
		FROM handoffs
		WHERE vendor_id = $1 AND first_contact_at IS NOT NULL AND created_at >= $2`,
		vendorID, since,
	).Scan(&stats.MeanMinutes)
	if err != nil {
		return ResponseStats{}, fmt.Errorf("response stats: %w", err)
	}
	return stats, nil
}

// RatingStatsSince computes the mean quality score the vendor assigned to
// received handoffs in the window.
func (r *Repo) RatingStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (RatingStats, error) {
	var stats RatingStats
	err := r.pool.QueryRow(ctx, `
		SELECT AVG(quality_score)::float8
		FROM handoffs
		WHERE vendor_id = $1 AND quality_score IS NOT NULL AND created_at >= $2`,
		vendorID, since,
	).Scan(&stats.Mean)
	if err != nil {
		return RatingStats{}, fmt.Errorf("rating stats: %w", err)
	}
	return stats, nil
}

func scanHandoff(row pgx.Row) (Handoff, error) {
	var h Handoff
	var urgency, status string
	err := row.Scan(
		&h.ID, &h.LeadID, &h.QualifierID, &h.VendorID, &h.Notes, &urgency, &status,
		&h.SLADeadline, &h.AcceptedAt, &h.RejectionReason, &h.FirstContactAt,
		&h.QualityScore, &h.Feedback, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return Handoff{}, err
	}
	h.Urgency = domain.Urgency(urgency)
	h.Status = domain.Status(status)
	return h, nil
}

func scanDetails(row pgx.Row) (Details, error) {
	var d Details
	var urgency, status string
	err := row.Scan(
		&d.ID, &d.LeadID, &d.QualifierID, &d.VendorID, &d.Notes, &urgency, &status,
		&d.SLADeadline, &d.AcceptedAt, &d.RejectionReason, &d.FirstContactAt,
		&d.QualityScore, &d.Feedback, &d.CreatedAt, &d.UpdatedAt,
		&d.LeadName, &d.VendorName,
	)
	if err != nil {
		return Details{}, err
	}
	d.Urgency = domain.Urgency(urgency)
	d.Status = domain.Status(status)
	return d, nil
}

func scanDetailsRows(rows pgx.Rows) ([]Details, error) {
	var items []Details
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan handoff details: %w", err)
		}
		items = append(items, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate handoff details: %w", rows.Err())
	}
	return items, nil
}
