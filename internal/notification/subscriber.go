package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/notification/inapp"
	"salesdesk_backend/internal/notification/outbox"
	"salesdesk_backend/platform/logger"
)

// Notification categories stored with each inbox entry.
const (
	categoryDistribution = "distribution"
	categoryHandoff      = "handoff"
	categorySLA          = "sla"
)

const (
	resourceLead    = "lead"
	resourceHandoff = "handoff"
)

// InboxWriter is the in-app write contract the subscriber depends on.
type InboxWriter interface {
	Create(ctx context.Context, p inapp.CreateParams) (inapp.Notification, error)
}

// OutboxWriter is the external-delivery write contract.
type OutboxWriter interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
}

// Subscriber turns routing and handoff lifecycle events into in-app
// notifications and outbox records. Sink only: it never publishes events and
// its failures are logged, not propagated, so notification trouble can never
// fail a distribution or a handoff mutation.
type Subscriber struct {
	inbox  InboxWriter
	outbox OutboxWriter
	names  *nameResolver
	log    *logger.Logger
}

// NewSubscriber creates the event subscriber.
func NewSubscriber(inbox InboxWriter, out OutboxWriter, names *nameResolver, log *logger.Logger) *Subscriber {
	return &Subscriber{inbox: inbox, outbox: out, names: names, log: log}
}

// Register wires the subscriber to every event it consumes.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.LeadDistributed{}.EventName(), events.HandlerFunc(s.onLeadDistributed))
	bus.Subscribe(events.HandoffCreated{}.EventName(), events.HandlerFunc(s.onHandoffCreated))
	bus.Subscribe(events.HandoffAccepted{}.EventName(), events.HandlerFunc(s.onHandoffAccepted))
	bus.Subscribe(events.HandoffRejected{}.EventName(), events.HandlerFunc(s.onHandoffRejected))
	bus.Subscribe(events.HandoffFirstContact{}.EventName(), events.HandlerFunc(s.onHandoffFirstContact))
	bus.Subscribe(events.HandoffFeedbackSubmitted{}.EventName(), events.HandlerFunc(s.onHandoffFeedback))
	bus.Subscribe(events.HandoffSLAOverdue{}.EventName(), events.HandlerFunc(s.onHandoffSLAOverdue))
}

func (s *Subscriber) onLeadDistributed(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.LeadDistributed)
	if !ok {
		return nil
	}

	leadName := s.names.LeadName(ctx, ev.LeadID)
	s.deliver(ctx, ev, ev.VendorID, inapp.CreateParams{
		UserID:       ev.VendorID,
		Title:        "Novo lead atribuído",
		Content:      fmt.Sprintf("O lead %s foi atribuído a você pela distribuição automática.", leadName),
		ResourceID:   &ev.LeadID,
		ResourceType: ptr(resourceLead),
		Category:     categoryDistribution,
	})
	return nil
}

func (s *Subscriber) onHandoffCreated(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffCreated)
	if !ok {
		return nil
	}

	leadName := s.names.LeadName(ctx, ev.LeadID)
	s.deliver(ctx, ev, ev.VendorID, inapp.CreateParams{
		UserID:       ev.VendorID,
		Title:        "Novo lead recebido",
		Content:      fmt.Sprintf("Você recebeu o lead %s com urgência %s. Prazo de primeiro contato: %s.", leadName, ev.Urgency, ev.SLADeadline.Format("02/01/2006 15:04")),
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categoryHandoff,
	})
	return nil
}

func (s *Subscriber) onHandoffAccepted(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffAccepted)
	if !ok {
		return nil
	}

	vendorName := s.names.VendorName(ctx, ev.VendorID)
	leadName := s.names.LeadName(ctx, ev.LeadID)
	s.deliver(ctx, ev, ev.QualifierID, inapp.CreateParams{
		UserID:       ev.QualifierID,
		Title:        "Repasse aceito",
		Content:      fmt.Sprintf("%s aceitou o lead %s.", vendorName, leadName),
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categoryHandoff,
	})
	return nil
}

func (s *Subscriber) onHandoffRejected(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffRejected)
	if !ok {
		return nil
	}

	vendorName := s.names.VendorName(ctx, ev.VendorID)
	leadName := s.names.LeadName(ctx, ev.LeadID)
	s.deliver(ctx, ev, ev.QualifierID, inapp.CreateParams{
		UserID:       ev.QualifierID,
		Title:        "Repasse recusado",
		Content:      fmt.Sprintf("%s recusou o lead %s. Motivo: %s", vendorName, leadName, ev.Reason),
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categoryHandoff,
	})
	return nil
}

func (s *Subscriber) onHandoffFirstContact(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffFirstContact)
	if !ok {
		return nil
	}

	vendorName := s.names.VendorName(ctx, ev.VendorID)
	leadName := s.names.LeadName(ctx, ev.LeadID)
	s.deliver(ctx, ev, ev.QualifierID, inapp.CreateParams{
		UserID:       ev.QualifierID,
		Title:        "Primeiro contato registrado",
		Content:      fmt.Sprintf("%s registrou o primeiro contato com o lead %s.", vendorName, leadName),
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categoryHandoff,
	})
	return nil
}

func (s *Subscriber) onHandoffFeedback(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffFeedbackSubmitted)
	if !ok {
		return nil
	}

	vendorName := s.names.VendorName(ctx, ev.VendorID)
	s.deliver(ctx, ev, ev.QualifierID, inapp.CreateParams{
		UserID:       ev.QualifierID,
		Title:        "Feedback recebido",
		Content:      fmt.Sprintf("%s avaliou um repasse com nota %d/5.", vendorName, ev.QualityScore),
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categoryHandoff,
	})
	return nil
}

func (s *Subscriber) onHandoffSLAOverdue(ctx context.Context, e events.Event) error {
	ev, ok := e.(events.HandoffSLAOverdue)
	if !ok {
		return nil
	}

	leadName := s.names.LeadName(ctx, ev.LeadID)
	content := fmt.Sprintf("O prazo de primeiro contato do lead %s expirou em %s.", leadName, ev.SLADeadline.Format("02/01/2006 15:04"))

	// Vendor and qualifier both get the escalation.
	s.deliver(ctx, ev, ev.VendorID, inapp.CreateParams{
		UserID:       ev.VendorID,
		Title:        "SLA de contato estourado",
		Content:      content,
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categorySLA,
	})
	s.deliver(ctx, ev, ev.QualifierID, inapp.CreateParams{
		UserID:       ev.QualifierID,
		Title:        "SLA de contato estourado",
		Content:      content,
		ResourceID:   &ev.HandoffID,
		ResourceType: ptr(resourceHandoff),
		Category:     categorySLA,
	})
	return nil
}

// deliver writes the in-app row and the matching outbox record, logging and
// swallowing failures.
func (s *Subscriber) deliver(ctx context.Context, e events.Event, userID uuid.UUID, p inapp.CreateParams) {
	if _, err := s.inbox.Create(ctx, p); err != nil {
		s.log.Warn("in-app notification write failed",
			"event", e.EventName(), "userId", userID, "error", err)
	}

	if _, err := s.outbox.Insert(ctx, outbox.InsertParams{Kind: e.EventName(), Payload: e}); err != nil {
		s.log.Warn("outbox insert failed",
			"event", e.EventName(), "userId", userID, "error", err)
	}
}

func ptr(s string) *string { return &s }
