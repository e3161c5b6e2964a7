package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateHandoffRequest contains data for handing a qualified lead to a vendor.
// Notes carry the qualification context and must be substantial.
type CreateHandoffRequest struct {
	LeadID      uuid.UUID `json:"leadId" validate:"required"`
	QualifierID uuid.UUID `json:"qualifierId" validate:"required"`
	VendorID    uuid.UUID `json:"vendorId" validate:"required"`
	Notes       string    `json:"notes" validate:"required,min=50"`
	Urgency     string    `json:"urgency" validate:"required,oneof=alta media baixa"`
}

// AcceptHandoffRequest identifies the vendor acting on the handoff.
type AcceptHandoffRequest struct {
	VendorID uuid.UUID `json:"vendorId" validate:"required"`
}

// RejectHandoffRequest carries the acting vendor and a mandatory reason.
type RejectHandoffRequest struct {
	VendorID uuid.UUID `json:"vendorId" validate:"required"`
	Reason   string    `json:"reason" validate:"required,min=1,max=1000"`
}

// FirstContactRequest identifies the vendor registering first contact.
type FirstContactRequest struct {
	VendorID uuid.UUID `json:"vendorId" validate:"required"`
}

// FeedbackRequest carries the vendor's quality score and structured payload.
type FeedbackRequest struct {
	VendorID uuid.UUID       `json:"vendorId" validate:"required"`
	Score    int             `json:"score" validate:"required"`
	Feedback json.RawMessage `json:"feedback,omitempty"`
}

// HandoffResponse represents a handoff in API responses.
type HandoffResponse struct {
	ID              uuid.UUID       `json:"id"`
	LeadID          uuid.UUID       `json:"leadId"`
	QualifierID     uuid.UUID       `json:"qualifierId"`
	VendorID        uuid.UUID       `json:"vendorId"`
	Notes           string          `json:"notes"`
	Urgency         string          `json:"urgency"`
	Status          string          `json:"status"`
	SLADeadline     time.Time       `json:"slaDeadline"`
	AcceptedAt      *time.Time      `json:"acceptedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	FirstContactAt  *time.Time      `json:"firstContactAt,omitempty"`
	QualityScore    *int            `json:"qualityScore,omitempty"`
	Feedback        json.RawMessage `json:"feedback,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// HandoffDetailsResponse adds joined display names.
type HandoffDetailsResponse struct {
	HandoffResponse
	LeadName   string `json:"leadName"`
	VendorName string `json:"vendorName"`
}

// HandoffListResponse wraps a list of handoffs.
type HandoffListResponse struct {
	Items []HandoffDetailsResponse `json:"items"`
	Total int                      `json:"total"`
}
