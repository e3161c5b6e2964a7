// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salesdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Distribution Domain Events
// =============================================================================

// LeadDistributed is published when the fair distributor assigns a lead to a vendor.
type LeadDistributed struct {
	BaseEvent
	LeadID      uuid.UUID  `json:"leadId"`
	VendorID    uuid.UUID  `json:"vendorId"`
	VendorName  string     `json:"vendorName"`
	QualifierID *uuid.UUID `json:"qualifierId,omitempty"`
	Attempts    int        `json:"attempts"`
}

func (e LeadDistributed) EventName() string { return "distribution.lead.distributed" }

// =============================================================================
// Handoff Domain Events
// =============================================================================

// HandoffCreated is published when a qualifier hands a lead to a vendor.
type HandoffCreated struct {
	BaseEvent
	HandoffID   uuid.UUID `json:"handoffId"`
	LeadID      uuid.UUID `json:"leadId"`
	QualifierID uuid.UUID `json:"qualifierId"`
	VendorID    uuid.UUID `json:"vendorId"`
	Urgency     string    `json:"urgency"`
	SLADeadline time.Time `json:"slaDeadline"`
}

func (e HandoffCreated) EventName() string { return "handoffs.created" }

// HandoffAccepted is published when the receiving vendor accepts a handoff.
type HandoffAccepted struct {
	BaseEvent
	HandoffID   uuid.UUID `json:"handoffId"`
	LeadID      uuid.UUID `json:"leadId"`
	QualifierID uuid.UUID `json:"qualifierId"`
	VendorID    uuid.UUID `json:"vendorId"`
}

func (e HandoffAccepted) EventName() string { return "handoffs.accepted" }

// HandoffRejected is published when the receiving vendor rejects a handoff.
type HandoffRejected struct {
	BaseEvent
	HandoffID   uuid.UUID `json:"handoffId"`
	LeadID      uuid.UUID `json:"leadId"`
	QualifierID uuid.UUID `json:"qualifierId"`
	VendorID    uuid.UUID `json:"vendorId"`
	Reason      string    `json:"reason"`
}

func (e HandoffRejected) EventName() string { return "handoffs.rejected" }

// HandoffFirstContact is published when the vendor records first contact with the lead.
type HandoffFirstContact struct {
	BaseEvent
	HandoffID   uuid.UUID `json:"handoffId"`
	LeadID      uuid.UUID `json:"leadId"`
	QualifierID uuid.UUID `json:"qualifierId"`
	VendorID    uuid.UUID `json:"vendorId"`
}

func (e HandoffFirstContact) EventName() string { return "handoffs.first_contact" }

// HandoffFeedbackSubmitted is published when the vendor scores a received handoff.
type HandoffFeedbackSubmitted struct {
	BaseEvent
	HandoffID    uuid.UUID `json:"handoffId"`
	QualifierID  uuid.UUID `json:"qualifierId"`
	VendorID     uuid.UUID `json:"vendorId"`
	QualityScore int       `json:"qualityScore"`
}

func (e HandoffFeedbackSubmitted) EventName() string { return "handoffs.feedback_submitted" }

// HandoffSLAOverdue is published when an accepted handoff passes its SLA deadline
// without a recorded first contact.
type HandoffSLAOverdue struct {
	BaseEvent
	HandoffID   uuid.UUID `json:"handoffId"`
	LeadID      uuid.UUID `json:"leadId"`
	QualifierID uuid.UUID `json:"qualifierId"`
	VendorID    uuid.UUID `json:"vendorId"`
	SLADeadline time.Time `json:"slaDeadline"`
}

func (e HandoffSLAOverdue) EventName() string { return "handoffs.sla_overdue" }
