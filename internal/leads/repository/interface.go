// Package repository provides the narrow lead store contract consumed by the
// routing engine. General lead CRUD (intake forms, Kanban filtering) lives in
// the admin surface and is deliberately not part of this backend.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lead is the prospective-client record being routed.
type Lead struct {
	ID          uuid.UUID  `db:"id"`
	Name        string     `db:"name"`
	ServiceType string     `db:"service_type"`
	Status      string     `db:"status"`
	OwnerID     *uuid.UUID `db:"owner_id"`
	QualifierID *uuid.UUID `db:"qualifier_id"`
	ConvertedAt *time.Time `db:"converted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// TerminalStatuses are lead statuses excluded from a vendor's active load.
var TerminalStatuses = []string{"convertido", "descartado", "inativo", "pausado"}

// ConversionStats aggregates a vendor's lead outcomes over a window.
type ConversionStats struct {
	Total     int
	Converted int
}

// Reader provides read operations on leads.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ListUnassigned(ctx context.Context) ([]Lead, error)
	CountActiveByOwner(ctx context.Context, vendorID uuid.UUID, excludedStatuses []string) (int, error)
	ConversionStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (ConversionStats, error)
}

// CreateParams contains parameters for registering a lead.
type CreateParams struct {
	Name        string
	ServiceType string
	QualifierID *uuid.UUID
}

// Writer provides the lead writes used by routing and tooling.
type Writer interface {
	// Create registers a lead in "novo" status. Intake normally happens in the
	// admin surface; this seam exists for seeding and operational tooling.
	Create(ctx context.Context, params CreateParams) (Lead, error)
	// AssignOwner sets the lead's owner (and optionally qualifier). Returns
	// false when the lead does not exist; the write is otherwise unconditional,
	// matching manual-transfer semantics where reassignment is allowed.
	AssignOwner(ctx context.Context, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) (bool, error)
}

// Repository combines the lead store operations used by this backend.
type Repository interface {
	Reader
	Writer
}
