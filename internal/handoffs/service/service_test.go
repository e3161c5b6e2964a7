package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/handoffs/domain"
	"salesdesk_backend/internal/handoffs/repository"
	"salesdesk_backend/internal/handoffs/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

type fakeRepo struct {
	handoffs map[uuid.UUID]repository.Handoff
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{handoffs: make(map[uuid.UUID]repository.Handoff)}
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Handoff, error) {
	h := repository.Handoff{
		ID:          uuid.New(),
		LeadID:      p.LeadID,
		QualifierID: p.QualifierID,
		VendorID:    p.VendorID,
		Notes:       p.Notes,
		Urgency:     p.Urgency,
		Status:      domain.StatusPending,
		SLADeadline: p.SLADeadline,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.handoffs[h.ID] = h
	return h, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Handoff, error) {
	h, ok := r.handoffs[id]
	if !ok {
		return repository.Handoff{}, apperr.NotFound("handoff not found")
	}
	return h, nil
}

func (r *fakeRepo) Accept(_ context.Context, id, vendorID uuid.UUID, at time.Time) (repository.Handoff, bool, error) {
	h, ok := r.handoffs[id]
	if !ok || h.VendorID != vendorID || h.Status != domain.StatusPending {
		return repository.Handoff{}, false, nil
	}
	h.Status = domain.StatusAccepted
	h.AcceptedAt = &at
	r.handoffs[id] = h
	return h, true, nil
}

func (r *fakeRepo) Reject(_ context.Context, id, vendorID uuid.UUID, reason string) (repository.Handoff, bool, error) {
	h, ok := r.handoffs[id]
	if !ok || h.VendorID != vendorID || h.Status != domain.StatusPending {
		return repository.Handoff{}, false, nil
	}
	h.Status = domain.StatusRejected
	h.RejectionReason = &reason
	r.handoffs[id] = h
	return h, true, nil
}

func (r *fakeRepo) SetFirstContact(_ context.Context, id, vendorID uuid.UUID, at time.Time) (repository.Handoff, bool, error) {
	h, ok := r.handoffs[id]
	if !ok || h.VendorID != vendorID {
		return repository.Handoff{}, false, nil
	}
	h.FirstContactAt = &at
	r.handoffs[id] = h
	return h, true, nil
}

func (r *fakeRepo) SetFeedback(_ context.Context, id, vendorID uuid.UUID, score int, feedback json.RawMessage) (repository.Handoff, bool, error) {
	h, ok := r.handoffs[id]
	if !ok || h.VendorID != vendorID || h.Status != domain.StatusAccepted {
		return repository.Handoff{}, false, nil
	}
	h.QualityScore = &score
	h.Feedback = feedback
	r.handoffs[id] = h
	return h, true, nil
}

func (r *fakeRepo) ListPendingByVendor(_ context.Context, vendorID uuid.UUID) ([]repository.Details, error) {
	var items []repository.Details
	for _, h := range r.handoffs {
		if h.VendorID == vendorID && h.Status == domain.StatusPending {
			items = append(items, repository.Details{Handoff: h})
		}
	}
	return items, nil
}

func (r *fakeRepo) ListOverdue(_ context.Context, now time.Time) ([]repository.Details, error) {
	var items []repository.Details
	for _, h := range r.handoffs {
		if h.Status == domain.StatusAccepted && h.FirstContactAt == nil && h.SLADeadline.Before(now) {
			items = append(items, repository.Details{Handoff: h})
		}
	}
	return items, nil
}

func (r *fakeRepo) Details(_ context.Context, id uuid.UUID) (repository.Details, error) {
	h, ok := r.handoffs[id]
	if !ok {
		return repository.Details{}, apperr.NotFound("handoff not found")
	}
	return repository.Details{Handoff: h}, nil
}

func (r *fakeRepo) ListByQualifier(_ context.Context, qualifierID uuid.UUID, status *domain.Status) ([]repository.Details, error) {
	var items []repository.Details
	for _, h := range r.handoffs {
		if h.QualifierID != qualifierID {
			continue
		}
		if status != nil && h.Status != *status {
			continue
		}
		items = append(items, repository.Details{Handoff: h})
	}
	return items, nil
}

func (r *fakeRepo) ResponseStatsSince(context.Context, uuid.UUID, time.Time) (repository.ResponseStats, error) {
	return repository.ResponseStats{}, nil
}

func (r *fakeRepo) RatingStatsSince(context.Context, uuid.UUID, time.Time) (repository.RatingStats, error) {
	return repository.RatingStats{}, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *fakeBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.published {
		out = append(out, e.EventName())
	}
	return out
}

type fakeScheduler struct {
	scheduled []time.Time
}

func (f *fakeScheduler) ScheduleSLACheck(_ context.Context, _ uuid.UUID, runAt time.Time) error {
	f.scheduled = append(f.scheduled, runAt)
	return nil
}

func newTestService(repo repository.Repository, bus events.Bus, sched SLAScheduler) *Service {
	return New(repo, bus, sched, logger.New("test"))
}

func validCreateRequest() transport.CreateHandoffRequest {
	return transport.CreateHandoffRequest{
		LeadID:      uuid.New(),
		QualifierID: uuid.New(),
		VendorID:    uuid.New(),
		Notes:       strings.Repeat("contexto da qualificação ", 3),
		Urgency:     "alta",
	}
}

func TestCreateComputesDeadlineFromUrgency(t *testing.T) {
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := newTestService(repo, &fakeBus{}, sched)
	fixed := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	req := validCreateRequest()
	req.Urgency = "media"
	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.SLADeadline.Equal(fixed.Add(48 * time.Hour)) {
		t.Fatalf("expected 48h deadline for media, got %v", resp.SLADeadline)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected initial status pending, got %s", resp.Status)
	}
	if len(sched.scheduled) != 1 || !sched.scheduled[0].Equal(resp.SLADeadline) {
		t.Fatalf("expected one SLA check scheduled at the deadline")
	}
}

func TestCreateRejectsInvalidUrgency(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeBus{}, nil)

	req := validCreateRequest()
	req.Urgency = "urgente"
	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsShortNotes(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeBus{}, nil)

	req := validCreateRequest()
	req.Notes = "curto demais"
	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEmitsEvent(t *testing.T) {
	bus := &fakeBus{}
	svc := newTestService(newFakeRepo(), bus, nil)

	if _, err := svc.Create(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := bus.names(); len(names) != 1 || names[0] != (events.HandoffCreated{}).EventName() {
		t.Fatalf("expected HandoffCreated event, got %v", names)
	}
}

func TestAcceptByWrongVendorIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus, nil)

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.published = nil

	_, ok, err := svc.Accept(context.Background(), created.ID, uuid.New())
	if err != nil {
		t.Fatalf("authorization failure must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected false for a non-owning vendor")
	}
	if repo.handoffs[created.ID].Status != domain.StatusPending {
		t.Fatalf("expected no mutation on unauthorized accept")
	}
	if len(bus.names()) != 0 {
		t.Fatalf("expected no event on unauthorized accept")
	}
}

func TestAcceptThenSecondAcceptReturnsFalse(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{}, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID

	if _, ok, _ := svc.Accept(context.Background(), created.ID, vendorID); !ok {
		t.Fatalf("expected first accept to succeed")
	}
	if _, ok, _ := svc.Accept(context.Background(), created.ID, vendorID); ok {
		t.Fatalf("expected second accept to return false")
	}
}

func TestRejectStoresReason(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID

	resp, ok, err := svc.Reject(context.Background(), created.ID, vendorID, "sem capacidade no momento")
	if err != nil || !ok {
		t.Fatalf("expected reject to succeed, ok=%v err=%v", ok, err)
	}
	if resp.Status != "rejected" || resp.RejectionReason == nil || *resp.RejectionReason != "sem capacidade no momento" {
		t.Fatalf("expected rejection reason stored")
	}
}

func TestAddFeedbackValidatesScoreThenSucceeds(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{}, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID
	svc.Accept(context.Background(), created.ID, vendorID)

	_, _, err := svc.AddFeedback(context.Background(), created.ID, vendorID, transport.FeedbackRequest{Score: 6})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for score 6, got %v", err)
	}

	resp, ok, err := svc.AddFeedback(context.Background(), created.ID, vendorID, transport.FeedbackRequest{
		Score:    3,
		Feedback: json.RawMessage(`{"comments":"lead qualificado corretamente"}`),
	})
	if err != nil || !ok {
		t.Fatalf("expected feedback to succeed, ok=%v err=%v", ok, err)
	}
	if resp.QualityScore == nil || *resp.QualityScore != 3 {
		t.Fatalf("expected stored score 3")
	}

	details, err := svc.Details(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.QualityScore == nil || *details.QualityScore != 3 {
		t.Fatalf("expected score retrievable via details")
	}
}

func TestAddFeedbackRequiresAcceptedHandoff(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{}, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID

	req := transport.FeedbackRequest{Score: 4}
	if _, ok, err := svc.AddFeedback(context.Background(), created.ID, vendorID, req); ok || err != nil {
		t.Fatalf("expected feedback on a pending handoff to be refused, ok=%v err=%v", ok, err)
	}
	if repo.handoffs[created.ID].QualityScore != nil {
		t.Fatalf("expected no score stored on a pending handoff")
	}

	svc.Reject(context.Background(), created.ID, vendorID, "cliente fora da área de atendimento")
	if _, ok, _ := svc.AddFeedback(context.Background(), created.ID, vendorID, req); ok {
		t.Fatalf("expected feedback on a rejected handoff to be refused")
	}

	second, _ := svc.Create(context.Background(), validCreateRequest())
	secondVendor := repo.handoffs[second.ID].VendorID
	svc.Accept(context.Background(), second.ID, secondVendor)
	if _, ok, err := svc.AddFeedback(context.Background(), second.ID, secondVendor, req); !ok || err != nil {
		t.Fatalf("expected feedback on an accepted handoff to land, ok=%v err=%v", ok, err)
	}
}

func TestMarkFirstContactIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{}, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID

	if _, ok, _ := svc.MarkFirstContact(context.Background(), created.ID, vendorID); !ok {
		t.Fatalf("expected first contact to register")
	}
	if _, ok, _ := svc.MarkFirstContact(context.Background(), created.ID, vendorID); !ok {
		t.Fatalf("expected repeated first contact to overwrite, not fail")
	}
}

func TestCheckSLAPublishesOnlyWhenOverdue(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID
	svc.Accept(context.Background(), created.ID, vendorID)
	bus.published = nil

	// Still inside the window: no event.
	if err := svc.CheckSLA(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.names()) != 0 {
		t.Fatalf("expected no event before the deadline")
	}

	// Past the deadline with no first contact: overdue fires.
	svc.now = func() time.Time { return created.SLADeadline.Add(time.Minute) }
	if err := svc.CheckSLA(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := bus.names(); len(names) != 1 || names[0] != (events.HandoffSLAOverdue{}).EventName() {
		t.Fatalf("expected HandoffSLAOverdue event, got %v", names)
	}
}

func TestCheckSLASkipsAfterFirstContact(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID
	svc.Accept(context.Background(), created.ID, vendorID)
	svc.MarkFirstContact(context.Background(), created.ID, vendorID)
	bus.published = nil

	svc.now = func() time.Time { return created.SLADeadline.Add(time.Hour) }
	if err := svc.CheckSLA(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.names()) != 0 {
		t.Fatalf("expected no overdue event after first contact")
	}
}

func TestOverdueSLABoundary(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{}, nil)

	created, _ := svc.Create(context.Background(), validCreateRequest())
	vendorID := repo.handoffs[created.ID].VendorID
	svc.Accept(context.Background(), created.ID, vendorID)

	svc.now = func() time.Time { return created.SLADeadline.Add(-time.Second) }
	list, err := svc.OverdueSLA(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected nothing overdue before the deadline")
	}

	svc.now = func() time.Time { return created.SLADeadline.Add(time.Second) }
	list, err = svc.OverdueSLA(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected one overdue handoff past the deadline")
	}
}
