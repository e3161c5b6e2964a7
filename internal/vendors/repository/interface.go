package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Vendor represents an account owner who receives routed leads.
type Vendor struct {
	ID                 uuid.UUID `db:"id"`
	Name               string    `db:"name"`
	Specialties        []string  `db:"specialties"`
	MaxConcurrentLeads *int      `db:"max_concurrent_leads"`
	IsActive           bool      `db:"is_active"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// CreateParams contains parameters for registering a vendor.
type CreateParams struct {
	Name               string
	Specialties        []string
	MaxConcurrentLeads *int
}

// UpdateParams contains parameters for updating a vendor's configuration.
type UpdateParams struct {
	ID                 uuid.UUID
	Name               *string
	Specialties        []string
	MaxConcurrentLeads *int
}

// VendorReader provides read operations for the vendor directory.
type VendorReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Vendor, error)
	List(ctx context.Context) ([]Vendor, error)
	ListActive(ctx context.Context) ([]Vendor, error)
}

// VendorWriter provides write operations for the vendor directory.
type VendorWriter interface {
	Create(ctx context.Context, params CreateParams) (Vendor, error)
	Update(ctx context.Context, params UpdateParams) (Vendor, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// Repository combines all vendor directory operations.
type Repository interface {
	VendorReader
	VendorWriter
}
