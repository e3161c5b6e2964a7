package transport

import (
	"time"

	"github.com/google/uuid"
)

// DistributeRequest carries the optional qualifier on a manual distribution call.
type DistributeRequest struct {
	QualifierID *uuid.UUID `json:"qualifierId,omitempty"`
}

// DistributionResult is the outcome of a successful single-lead distribution.
type DistributionResult struct {
	LeadID             uuid.UUID `json:"leadId"`
	VendorID           uuid.UUID `json:"vendorId"`
	VendorName         string    `json:"vendorName"`
	Attempts           int       `json:"attempts"`
	AlreadyDistributed bool      `json:"alreadyDistributed,omitempty"`
}

// BatchResult summarizes a batch distribution run.
type BatchResult struct {
	Processed   int `json:"processed"`
	Distributed int `json:"distributed"`
}

// Preview is the read-only dry run of the selection algorithm.
type Preview struct {
	VendorID       uuid.UUID  `json:"vendorId"`
	VendorName     string     `json:"vendorName"`
	LastAssignedAt *time.Time `json:"lastAssignedAt,omitempty"`
}

// QueueEntryResponse exposes a ledger entry for operator inspection.
type QueueEntryResponse struct {
	LeadID       uuid.UUID  `json:"leadId"`
	Attempts     int        `json:"attempts"`
	NextVendorID *uuid.UUID `json:"nextVendorId,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}
