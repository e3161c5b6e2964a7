package adapters

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	leadsrepo "salesdesk_backend/internal/leads/repository"
)

// DistributionLeadStore adapts the lead repository for the fair distributor,
// binding owner assignment to the distribution transaction.
type DistributionLeadStore struct {
	repo *leadsrepo.Repo
}

// NewDistributionLeadStore creates the adapter.
func NewDistributionLeadStore(repo *leadsrepo.Repo) *DistributionLeadStore {
	return &DistributionLeadStore{repo: repo}
}

// ListUnassigned returns all leads without an owner.
func (a *DistributionLeadStore) ListUnassigned(ctx context.Context) ([]leadsrepo.Lead, error) {
	return a.repo.ListUnassigned(ctx)
}

// AssignOwner writes the new owner inside the distributor's transaction.
func (a *DistributionLeadStore) AssignOwner(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) (bool, error) {
	return a.repo.WithTx(tx).AssignOwner(ctx, leadID, vendorID, qualifierID)
}
