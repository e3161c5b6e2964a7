package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/handoffs/domain"
	"salesdesk_backend/internal/handoffs/repository"
	"salesdesk_backend/internal/handoffs/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

const (
	msgInvalidUrgency = "invalid urgency: must be alta, media or baixa"
	msgInvalidScore   = "invalid score: must be between 1 and 5"
	msgNotesTooShort  = "notes must have at least 50 characters"
)

const minNotesLen = 50

// SLAScheduler enqueues a deferred SLA check for a handoff. Implemented by the
// scheduler client; a nil scheduler disables deferred checks.
type SLAScheduler interface {
	ScheduleSLACheck(ctx context.Context, handoffID uuid.UUID, runAt time.Time) error
}

// Service manages the handoff lifecycle: creation with an SLA deadline,
// vendor accept/reject, first-contact tracking and quality feedback.
type Service struct {
	repo      repository.Repository
	bus       events.Bus
	scheduler SLAScheduler
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new handoff service.
func New(repo repository.Repository, bus events.Bus, scheduler SLAScheduler, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		scheduler: scheduler,
		log:       log,
		now:       time.Now,
	}
}

// Create registers a pending handoff. The SLA deadline is fixed at creation
// from the urgency window and never recomputed.
func (s *Service) Create(ctx context.Context, req transport.CreateHandoffRequest) (transport.HandoffResponse, error) {
	urgency, err := domain.ParseUrgency(req.Urgency)
	if err != nil {
		return transport.HandoffResponse{}, apperr.Validation(msgInvalidUrgency)
	}
	if len(req.Notes) < minNotesLen {
		return transport.HandoffResponse{}, apperr.Validation(msgNotesTooShort)
	}

	deadline := urgency.Deadline(s.now())

	h, err := s.repo.Create(ctx, repository.CreateParams{
		LeadID:      req.LeadID,
		QualifierID: req.QualifierID,
		VendorID:    req.VendorID,
		Notes:       req.Notes,
		Urgency:     urgency,
		SLADeadline: deadline,
	})
	if err != nil {
		return transport.HandoffResponse{}, err
	}

	s.bus.Publish(ctx, events.HandoffCreated{
		BaseEvent:   events.NewBaseEvent(),
		HandoffID:   h.ID,
		LeadID:      h.LeadID,
		QualifierID: h.QualifierID,
		VendorID:    h.VendorID,
		Urgency:     string(h.Urgency),
		SLADeadline: h.SLADeadline,
	})

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleSLACheck(ctx, h.ID, h.SLADeadline); err != nil {
			s.log.Warn("failed to schedule sla check", "handoffId", h.ID, "error", err)
		}
	}

	return toResponse(h), nil
}

// Accept moves a pending handoff to accepted for the acting vendor. Returns
// false without error when the vendor does not own the handoff or it is no
// longer pending.
func (s *Service) Accept(ctx context.Context, id, vendorID uuid.UUID) (transport.HandoffResponse, bool, error) {
	h, ok, err := s.repo.Accept(ctx, id, vendorID, s.now())
	if err != nil || !ok {
		return transport.HandoffResponse{}, ok, err
	}

	s.bus.Publish(ctx, events.HandoffAccepted{
		BaseEvent:   events.NewBaseEvent(),
		HandoffID:   h.ID,
		LeadID:      h.LeadID,
		QualifierID: h.QualifierID,
		VendorID:    h.VendorID,
	})
	return toResponse(h), true, nil
}

// Reject moves a pending handoff to rejected with the given reason, under the
// same ownership and pending guards as Accept.
func (s *Service) Reject(ctx context.Context, id, vendorID uuid.UUID, reason string) (transport.HandoffResponse, bool, error) {
	h, ok, err := s.repo.Reject(ctx, id, vendorID, reason)
	if err != nil || !ok {
		return transport.HandoffResponse{}, ok, err
	}

	s.bus.Publish(ctx, events.HandoffRejected{
		BaseEvent:   events.NewBaseEvent(),
		HandoffID:   h.ID,
		LeadID:      h.LeadID,
		QualifierID: h.QualifierID,
		VendorID:    h.VendorID,
		Reason:      reason,
	})
	return toResponse(h), true, nil
}

// MarkFirstContact records when the vendor first reached the lead. Repeated
// calls overwrite the timestamp.
func (s *Service) MarkFirstContact(ctx context.Context, id, vendorID uuid.UUID) (transport.HandoffResponse, bool, error) {
	h, ok, err := s.repo.SetFirstContact(ctx, id, vendorID, s.now())
	if err != nil || !ok {
		return transport.HandoffResponse{}, ok, err
	}

	s.bus.Publish(ctx, events.HandoffFirstContact{
		BaseEvent:   events.NewBaseEvent(),
		HandoffID:   h.ID,
		LeadID:      h.LeadID,
		QualifierID: h.QualifierID,
		VendorID:    h.VendorID,
	})
	return toResponse(h), true, nil
}

// AddFeedback stores the vendor's quality score and structured payload for an
// accepted handoff. The score must be within 1..5.
func (s *Service) AddFeedback(ctx context.Context, id, vendorID uuid.UUID, req transport.FeedbackRequest) (transport.HandoffResponse, bool, error) {
	if req.Score < 1 || req.Score > 5 {
		return transport.HandoffResponse{}, false, apperr.Validation(msgInvalidScore)
	}

	h, ok, err := s.repo.SetFeedback(ctx, id, vendorID, req.Score, req.Feedback)
	if err != nil || !ok {
		return transport.HandoffResponse{}, ok, err
	}

	s.bus.Publish(ctx, events.HandoffFeedbackSubmitted{
		BaseEvent:    events.NewBaseEvent(),
		HandoffID:    h.ID,
		QualifierID:  h.QualifierID,
		VendorID:     h.VendorID,
		QualityScore: req.Score,
	})
	return toResponse(h), true, nil
}

// PendingForVendor lists a vendor's pending handoffs, most urgent and closest
// to the SLA deadline first.
func (s *Service) PendingForVendor(ctx context.Context, vendorID uuid.UUID) (transport.HandoffListResponse, error) {
	items, err := s.repo.ListPendingByVendor(ctx, vendorID)
	if err != nil {
		return transport.HandoffListResponse{}, err
	}
	return toListResponse(items), nil
}

// OverdueSLA lists accepted handoffs past their deadline with no first contact.
func (s *Service) OverdueSLA(ctx context.Context) (transport.HandoffListResponse, error) {
	items, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		return transport.HandoffListResponse{}, err
	}
	return toListResponse(items), nil
}

// Details returns a handoff with joined lead and vendor names.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (transport.HandoffDetailsResponse, error) {
	d, err := s.repo.Details(ctx, id)
	if err != nil {
		return transport.HandoffDetailsResponse{}, err
	}
	return toDetailsResponse(d), nil
}

// ByQualifier lists a qualifier's handoffs, newest first, optionally filtered
// by status.
func (s *Service) ByQualifier(ctx context.Context, qualifierID uuid.UUID, status *domain.Status) (transport.HandoffListResponse, error) {
	items, err := s.repo.ListByQualifier(ctx, qualifierID, status)
	if err != nil {
		return transport.HandoffListResponse{}, err
	}
	return toListResponse(items), nil
}

// CheckSLA is invoked by the scheduler worker at a handoff's deadline. It
// publishes HandoffSLAOverdue when the handoff was accepted, the deadline has
// passed and no first contact was recorded. Any other state is a no-op.
func (s *Service) CheckSLA(ctx context.Context, id uuid.UUID) error {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}

	if h.Status != domain.StatusAccepted || h.FirstContactAt != nil || !h.SLADeadline.Before(s.now()) {
		return nil
	}

	s.log.Warn("handoff sla overdue", "handoffId", h.ID, "vendorId", h.VendorID, "deadline", h.SLADeadline)
	s.bus.Publish(ctx, events.HandoffSLAOverdue{
		BaseEvent:   events.NewBaseEvent(),
		HandoffID:   h.ID,
		LeadID:      h.LeadID,
		QualifierID: h.QualifierID,
		VendorID:    h.VendorID,
		SLADeadline: h.SLADeadline,
	})
	return nil
}

func toResponse(h repository.Handoff) transport.HandoffResponse {
	return transport.HandoffResponse{
		ID:              h.ID,
		LeadID:          h.LeadID,
		QualifierID:     h.QualifierID,
		VendorID:        h.VendorID,
		Notes:           h.Notes,
		Urgency:         string(h.Urgency),
		Status:          string(h.Status),
		SLADeadline:     h.SLADeadline,
		AcceptedAt:      h.AcceptedAt,
		RejectionReason: h.RejectionReason,
		FirstContactAt:  h.FirstContactAt,
		QualityScore:    h.QualityScore,
		Feedback:        h.Feedback,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

func toDetailsResponse(d repository.Details) transport.HandoffDetailsResponse {
	return transport.HandoffDetailsResponse{
		HandoffResponse: toResponse(d.Handoff),
		LeadName:        d.LeadName,
		VendorName:      d.VendorName,
	}
}

func toListResponse(items []repository.Details) transport.HandoffListResponse {
	resp := transport.HandoffListResponse{
		Items: make([]transport.HandoffDetailsResponse, 0, len(items)),
		Total: len(items),
	}
	for _, d := range items {
		resp.Items = append(resp.Items, toDetailsResponse(d))
	}
	return resp
}
