package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"

	leadsrepo "salesdesk_backend/internal/leads/repository"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
)

// VendorReader resolves vendor display names.
type VendorReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (vendorsrepo.Vendor, error)
}

// LeadReader resolves lead display names.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// nameResolver caches display-name lookups per process. Notifications are
// fire-and-forget, so a stale name after a rename is acceptable; the cache is
// an explicit per-module object with no global state.
type nameResolver struct {
	vendors VendorReader
	leads   LeadReader

	mu          sync.RWMutex
	vendorNames map[uuid.UUID]string
	leadNames   map[uuid.UUID]string
}

func newNameResolver(vendors VendorReader, leads LeadReader) *nameResolver {
	return &nameResolver{
		vendors:     vendors,
		leads:       leads,
		vendorNames: make(map[uuid.UUID]string),
		leadNames:   make(map[uuid.UUID]string),
	}
}

// VendorName returns the vendor's display name, or a neutral fallback when
// the lookup fails. Notification text never blocks on resolution errors.
func (r *nameResolver) VendorName(ctx context.Context, id uuid.UUID) string {
	r.mu.RLock()
	name, ok := r.vendorNames[id]
	r.mu.RUnlock()
	if ok {
		return name
	}

	vendor, err := r.vendors.GetByID(ctx, id)
	if err != nil {
		return "vendedor"
	}

	r.mu.Lock()
	r.vendorNames[id] = vendor.Name
	r.mu.Unlock()
	return vendor.Name
}

// LeadName returns the lead's display name, or a neutral fallback when the
// lookup fails.
func (r *nameResolver) LeadName(ctx context.Context, id uuid.UUID) string {
	r.mu.RLock()
	name, ok := r.leadNames[id]
	r.mu.RUnlock()
	if ok {
		return name
	}

	lead, err := r.leads.GetByID(ctx, id)
	if err != nil {
		return "lead"
	}

	r.mu.Lock()
	r.leadNames[id] = lead.Name
	r.mu.Unlock()
	return lead.Name
}
