package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/handoffs/domain"
)

// Handoff is the manually-initiated transfer record from qualifier to vendor.
// Never deleted: the table is the audit trail of the qualification pipeline.
type Handoff struct {
	ID              uuid.UUID       `db:"id"`
	LeadID          uuid.UUID       `db:"lead_id"`
	QualifierID     uuid.UUID       `db:"qualifier_id"`
	VendorID        uuid.UUID       `db:"vendor_id"`
	Notes           string          `db:"notes"`
	Urgency         domain.Urgency  `db:"urgency"`
	Status          domain.Status   `db:"status"`
	SLADeadline     time.Time       `db:"sla_deadline"`
	AcceptedAt      *time.Time      `db:"accepted_at"`
	RejectionReason *string         `db:"rejection_reason"`
	FirstContactAt  *time.Time      `db:"first_contact_at"`
	QualityScore    *int            `db:"quality_score"`
	Feedback        json.RawMessage `db:"feedback"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Details is a handoff joined with display names for lead and vendor.
type Details struct {
	Handoff
	LeadName   string `db:"lead_name"`
	VendorName string `db:"vendor_name"`
}

// CreateParams contains parameters for creating a handoff.
type CreateParams struct {
	LeadID      uuid.UUID
	QualifierID uuid.UUID
	VendorID    uuid.UUID
	Notes       string
	Urgency     domain.Urgency
	SLADeadline time.Time
}

// ResponseStats aggregates a vendor's first-contact speed over a window.
type ResponseStats struct {
	// MeanMinutes is nil when the vendor has no measured first contacts.
	MeanMinutes *float64
}

// RatingStats aggregates a vendor's received quality scores over a window.
type RatingStats struct {
	// Mean is nil when the vendor has no scored handoffs.
	Mean *float64
}

// Repository persists and queries handoffs. All vendor-gated mutations are
// conditional updates: the vendor-ownership check (and, for accept/reject, the
// pending-status guard) happens atomically in the WHERE clause, and a false
// return means nothing changed.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Handoff, error)
	GetByID(ctx context.Context, id uuid.UUID) (Handoff, error)

	Accept(ctx context.Context, id, vendorID uuid.UUID, at time.Time) (Handoff, bool, error)
	Reject(ctx context.Context, id, vendorID uuid.UUID, reason string) (Handoff, bool, error)
	SetFirstContact(ctx context.Context, id, vendorID uuid.UUID, at time.Time) (Handoff, bool, error)
	SetFeedback(ctx context.Context, id, vendorID uuid.UUID, score int, feedback json.RawMessage) (Handoff, bool, error)

	ListPendingByVendor(ctx context.Context, vendorID uuid.UUID) ([]Details, error)
	ListOverdue(ctx context.Context, now time.Time) ([]Details, error)
	Details(ctx context.Context, id uuid.UUID) (Details, error)
	ListByQualifier(ctx context.Context, qualifierID uuid.UUID, status *domain.Status) ([]Details, error)

	ResponseStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (ResponseStats, error)
	RatingStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (RatingStats, error)
}
