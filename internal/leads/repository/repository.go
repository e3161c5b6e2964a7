package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, letting the distributor
// run lead writes inside its own transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	db DBTX
}

// New creates a new lead store repository backed by the pool.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{db: tx}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a lead by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `
		SELECT id, name, service_type, status, owner_id, qualifier_id, converted_at, created_at, updated_at
		FROM leads
		WHERE id = $1`

	var l Lead
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.ServiceType, &l.Status, &l.OwnerID, &l.QualifierID,
		&l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}

	return l, nil
}

// Create registers a lead in the default "novo" status.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	query := `
		INSERT INTO leads (name, service_type, qualifier_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, service_type, status, owner_id, qualifier_id, converted_at, created_at, updated_at`

	var l Lead
	err := r.db.QueryRow(ctx, query, params.Name, params.ServiceType, params.QualifierID).Scan(
		&l.ID, &l.Name, &l.ServiceType, &l.Status, &l.OwnerID, &l.QualifierID,
		&l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}

	return l, nil
}

// ListUnassigned retrieves all leads without an owner, oldest first.
func (r *Repo) ListUnassigned(ctx context.Context) ([]Lead, error) {
	query := `
		SELECT id, name, service_type, status, owner_id, qualifier_id, converted_at, created_at, updated_at
		FROM leads
		WHERE owner_id IS NULL
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unassigned leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.ServiceType, &l.Status, &l.OwnerID, &l.QualifierID,
			&l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate leads: %w", rows.Err())
	}

	return leads, nil
}

// CountActiveByOwner counts a vendor's leads excluding terminal statuses.
func (r *Repo) CountActiveByOwner(ctx context.Context, vendorID uuid.UUID, excludedStatuses []string) (int, error) {
	if excludedStatuses == nil {
		excludedStatuses = TerminalStatuses
	}

	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE owner_id = $1 AND status <> ALL($2)`,
		vendorID, excludedStatuses,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active leads by owner: %w", err)
	}

	return count, nil
}

// ConversionStatsSince aggregates a vendor's lead outcomes since the given time.
func (r *Repo) ConversionStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (ConversionStats, error) {
	var stats ConversionStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'convertido')
		FROM leads
		WHERE owner_id = $1 AND created_at >= $2`,
		vendorID, since,
	).Scan(&stats.Total, &stats.Converted)
	if err != nil {
		return ConversionStats{}, fmt.Errorf("conversion stats: %w", err)
	}

	return stats, nil
}

// AssignOwner sets the lead's owner and optionally its qualifier.
func (r *Repo) AssignOwner(ctx context.Context, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE leads
		SET owner_id = $2,
		    qualifier_id = COALESCE($3, qualifier_id),
		    updated_at = now()
		WHERE id = $1`,
		leadID, vendorID, qualifierID,
	)
	if err != nil {
		return false, fmt.Errorf("assign lead owner: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
