package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/distribution/repository"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
)

// candidate pairs a vendor with its accumulated assignment history.
type candidate struct {
	Vendor         vendorsrepo.Vendor
	Total          int
	LastAssignedAt *time.Time
}

// selectNextVendor picks the vendor owed the next lead: least total historical
// assignments, ties broken by the older last assignment. A vendor that has
// never been assigned (nil LastAssignedAt) beats any timestamp. Remaining ties
// fall back to name then id so the choice is fully deterministic.
func selectNextVendor(vendors []vendorsrepo.Vendor, stats map[uuid.UUID]repository.VendorStats) *candidate {
	var best *candidate
	for _, vendor := range vendors {
		current := candidate{Vendor: vendor}
		if s, ok := stats[vendor.ID]; ok {
			current.Total = s.Total
			current.LastAssignedAt = s.LastAssignedAt
		}

		if best == nil || current.beats(*best) {
			c := current
			best = &c
		}
	}
	return best
}

// beats reports whether c should be chosen over other.
func (c candidate) beats(other candidate) bool {
	if c.Total != other.Total {
		return c.Total < other.Total
	}

	switch {
	case c.LastAssignedAt == nil && other.LastAssignedAt != nil:
		return true
	case c.LastAssignedAt != nil && other.LastAssignedAt == nil:
		return false
	case c.LastAssignedAt != nil && other.LastAssignedAt != nil:
		if !c.LastAssignedAt.Equal(*other.LastAssignedAt) {
			return c.LastAssignedAt.Before(*other.LastAssignedAt)
		}
	}

	if cmp := strings.Compare(c.Vendor.Name, other.Vendor.Name); cmp != 0 {
		return cmp < 0
	}
	return c.Vendor.ID.String() < other.Vendor.ID.String()
}
