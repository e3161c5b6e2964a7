package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

const vendorNotFoundMessage = "vendor not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new vendor directory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a vendor by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Vendor, error) {
	query := `
		SELECT id, name, specialties, max_concurrent_leads, is_active, created_at, updated_at
		FROM vendors
		WHERE id = $1`

	var v Vendor
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Name, &v.Specialties, &v.MaxConcurrentLeads, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vendor{}, apperr.NotFound(vendorNotFoundMessage)
		}
		return Vendor{}, fmt.Errorf("get vendor by id: %w", err)
	}

	return v, nil
}

// List retrieves all vendors ordered by name.
func (r *Repo) List(ctx context.Context) ([]Vendor, error) {
	query := `
		SELECT id, name, specialties, max_concurrent_leads, is_active, created_at, updated_at
		FROM vendors
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	return scanVendors(rows)
}

// ListActive retrieves only active vendors ordered by name.
func (r *Repo) ListActive(ctx context.Context) ([]Vendor, error) {
	query := `
		SELECT id, name, specialties, max_concurrent_leads, is_active, created_at, updated_at
		FROM vendors
		WHERE is_active = true
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active vendors: %w", err)
	}
	defer rows.Close()

	return scanVendors(rows)
}

// Create registers a new vendor in the directory.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Vendor, error) {
	query := `
		INSERT INTO vendors (name, specialties, max_concurrent_leads)
		VALUES ($1, $2, $3)
		RETURNING id, name, specialties, max_concurrent_leads, is_active, created_at, updated_at`

	specialties := params.Specialties
	if specialties == nil {
		specialties = []string{}
	}

	var v Vendor
	err := r.pool.QueryRow(ctx, query, params.Name, specialties, params.MaxConcurrentLeads).Scan(
		&v.ID, &v.Name, &v.Specialties, &v.MaxConcurrentLeads, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return Vendor{}, fmt.Errorf("create vendor: %w", err)
	}

	return v, nil
}

// Update modifies a vendor's configuration. Nil fields are left unchanged.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Vendor, error) {
	query := `
		UPDATE vendors
		SET name = COALESCE($2, name),
		    specialties = COALESCE($3, specialties),
		    max_concurrent_leads = COALESCE($4, max_concurrent_leads),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, specialties, max_concurrent_leads, is_active, created_at, updated_at`

	var v Vendor
	err := r.pool.QueryRow(ctx, query, params.ID, params.Name, params.Specialties, params.MaxConcurrentLeads).Scan(
		&v.ID, &v.Name, &v.Specialties, &v.MaxConcurrentLeads, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vendor{}, apperr.NotFound(vendorNotFoundMessage)
		}
		return Vendor{}, fmt.Errorf("update vendor: %w", err)
	}

	return v, nil
}

// SetActive toggles a vendor's active flag.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vendors SET is_active = $2, updated_at = now() WHERE id = $1`,
		id, isActive,
	)
	if err != nil {
		return fmt.Errorf("set vendor active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(vendorNotFoundMessage)
	}
	return nil
}

func scanVendors(rows pgx.Rows) ([]Vendor, error) {
	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Specialties, &v.MaxConcurrentLeads, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate vendors: %w", rows.Err())
	}
	return vendors, nil
}
