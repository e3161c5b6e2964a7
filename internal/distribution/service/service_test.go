package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/internal/distribution/repository"
	"salesdesk_backend/internal/events"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeTxBeginner struct {
	tx *fakeTx
}

func (f *fakeTxBeginner) Begin(context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeQueue struct {
	entries       map[uuid.UUID]repository.QueueEntry
	upserts       int
	markedErrors  map[uuid.UUID]string
	distributedTo map[uuid.UUID]uuid.UUID
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		entries:       make(map[uuid.UUID]repository.QueueEntry),
		markedErrors:  make(map[uuid.UUID]string),
		distributedTo: make(map[uuid.UUID]uuid.UUID),
	}
}

func (q *fakeQueue) Upsert(_ context.Context, leadID uuid.UUID) (repository.QueueEntry, error) {
	q.upserts++
	entry, ok := q.entries[leadID]
	if !ok {
		entry = repository.QueueEntry{LeadID: leadID, Status: repository.StatusPending}
	} else {
		entry.Status = repository.StatusPending
		entry.ErrorMessage = nil
	}
	q.entries[leadID] = entry
	return entry, nil
}

func (q *fakeQueue) EnsureAndLock(_ context.Context, _ pgx.Tx, leadID uuid.UUID) (repository.QueueEntry, error) {
	entry, ok := q.entries[leadID]
	if !ok {
		entry = repository.QueueEntry{LeadID: leadID, Status: repository.StatusPending}
		q.entries[leadID] = entry
	}
	return entry, nil
}

func (q *fakeQueue) MarkDistributed(_ context.Context, _ pgx.Tx, leadID, vendorID uuid.UUID) error {
	entry := q.entries[leadID]
	entry.Status = repository.StatusDistributed
	entry.NextVendorID = &vendorID
	entry.Attempts++
	q.entries[leadID] = entry
	q.distributedTo[leadID] = vendorID
	return nil
}

func (q *fakeQueue) MarkError(_ context.Context, leadID uuid.UUID, message string) error {
	entry := q.entries[leadID]
	entry.Status = repository.StatusError
	entry.ErrorMessage = &message
	entry.Attempts++
	q.entries[leadID] = entry
	q.markedErrors[leadID] = message
	return nil
}

func (q *fakeQueue) Get(_ context.Context, leadID uuid.UUID) (repository.QueueEntry, error) {
	entry, ok := q.entries[leadID]
	if !ok {
		return repository.QueueEntry{}, apperr.NotFound("queue entry not found")
	}
	return entry, nil
}

type fakeHistory struct {
	stats    map[uuid.UUID]repository.VendorStats
	recorded []uuid.UUID
}

func (h *fakeHistory) Record(_ context.Context, _ pgx.Tx, _, vendorID uuid.UUID, _ *uuid.UUID) error {
	h.recorded = append(h.recorded, vendorID)
	return nil
}

func (h *fakeHistory) StatsByVendor(context.Context, []uuid.UUID) (map[uuid.UUID]repository.VendorStats, error) {
	if h.stats == nil {
		return map[uuid.UUID]repository.VendorStats{}, nil
	}
	return h.stats, nil
}

type fakeVendors struct {
	active []vendorsrepo.Vendor
}

func (f *fakeVendors) ListActive(context.Context) ([]vendorsrepo.Vendor, error) {
	return f.active, nil
}

type fakeLeads struct {
	unassigned []leadsrepo.Lead
	assigned   map[uuid.UUID]uuid.UUID
	assignErr  error
}

func (f *fakeLeads) ListUnassigned(context.Context) ([]leadsrepo.Lead, error) {
	return f.unassigned, nil
}

func (f *fakeLeads) AssignOwner(_ context.Context, _ pgx.Tx, leadID, vendorID uuid.UUID, _ *uuid.UUID) (bool, error) {
	if f.assignErr != nil {
		return false, f.assignErr
	}
	if f.assigned == nil {
		f.assigned = make(map[uuid.UUID]uuid.UUID)
	}
	f.assigned[leadID] = vendorID
	return true, nil
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

func (b *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	b.Publish(context.Background(), e)
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

func newTestService(db TxBeginner, queue *fakeQueue, history *fakeHistory, vendors *fakeVendors, leads LeadStore, bus events.Bus) *Service {
	return New(db, queue, history, vendors, leads, bus, logger.New("test"))
}

func TestDistributeLeadAssignsLeastLoadedVendor(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	bruno := vendorsrepo.Vendor{ID: uuid.New(), Name: "Bruno", IsActive: true}
	queue := newFakeQueue()
	history := &fakeHistory{stats: map[uuid.UUID]repository.VendorStats{
		ana.ID:   {Total: 4, LastAssignedAt: ts(10)},
		bruno.ID: {Total: 1, LastAssignedAt: ts(60)},
	}}
	leads := &fakeLeads{}
	bus := &fakeBus{}
	db := &fakeTxBeginner{}
	svc := newTestService(db, queue, history, &fakeVendors{active: []vendorsrepo.Vendor{ana, bruno}}, leads, bus)

	leadID := uuid.New()
	result, err := svc.DistributeLead(context.Background(), leadID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VendorID != bruno.ID {
		t.Fatalf("expected least-loaded vendor, got %s", result.VendorName)
	}
	if leads.assigned[leadID] != bruno.ID {
		t.Fatalf("expected lead owner write for chosen vendor")
	}
	if queue.distributedTo[leadID] != bruno.ID {
		t.Fatalf("expected ledger marked distributed")
	}
	if len(history.recorded) != 1 || history.recorded[0] != bruno.ID {
		t.Fatalf("expected one history record for chosen vendor")
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Fatalf("expected transaction committed, got committed=%v rolledBack=%v", db.tx.committed, db.tx.rolledBack)
	}
	if names := bus.names(); len(names) != 1 || names[0] != (events.LeadDistributed{}).EventName() {
		t.Fatalf("expected one LeadDistributed event, got %v", names)
	}
	distributed, ok := bus.published[0].(events.LeadDistributed)
	if !ok {
		t.Fatalf("expected a LeadDistributed payload, got %T", bus.published[0])
	}
	if distributed.Attempts != 1 {
		t.Fatalf("expected first attempt counted in the event, got %d", distributed.Attempts)
	}
	if result.Attempts != 1 {
		t.Fatalf("expected first attempt counted in the result, got %d", result.Attempts)
	}
}

func TestDistributeLeadReturnsPriorAssignment(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	leadID := uuid.New()
	queue := newFakeQueue()
	queue.entries[leadID] = repository.QueueEntry{
		LeadID:       leadID,
		Status:       repository.StatusDistributed,
		NextVendorID: &ana.ID,
	}
	leads := &fakeLeads{}
	bus := &fakeBus{}
	svc := newTestService(&fakeTxBeginner{}, queue, &fakeHistory{}, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, leads, bus)

	result, err := svc.DistributeLead(context.Background(), leadID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyDistributed {
		t.Fatalf("expected AlreadyDistributed for a distributed entry")
	}
	if result.VendorID != ana.ID {
		t.Fatalf("expected prior assignment returned")
	}
	if len(leads.assigned) != 0 {
		t.Fatalf("expected no new owner write")
	}
	if len(bus.names()) != 0 {
		t.Fatalf("expected no event for a duplicate call")
	}
}

func TestDistributeLeadNoActiveVendorMarksLedgerError(t *testing.T) {
	queue := newFakeQueue()
	db := &fakeTxBeginner{}
	svc := newTestService(db, queue, &fakeHistory{}, &fakeVendors{}, &fakeLeads{}, &fakeBus{})

	leadID := uuid.New()
	_, err := svc.DistributeLead(context.Background(), leadID, nil)
	if err == nil {
		t.Fatalf("expected error with no active vendors")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable kind, got %v", apperr.GetKind(err))
	}
	if !db.tx.rolledBack {
		t.Fatalf("expected transaction rollback")
	}
	if _, ok := queue.markedErrors[leadID]; !ok {
		t.Fatalf("expected ledger error recorded outside the transaction")
	}
}

func TestDistributeLeadAssignmentFailureSurfaces(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	queue := newFakeQueue()
	leads := &fakeLeads{assignErr: errors.New("boom")}
	db := &fakeTxBeginner{}
	svc := newTestService(db, queue, &fakeHistory{}, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, leads, &fakeBus{})

	leadID := uuid.New()
	if _, err := svc.DistributeLead(context.Background(), leadID, nil); err == nil {
		t.Fatalf("expected assignment failure to surface")
	}
	if !db.tx.rolledBack {
		t.Fatalf("expected rollback on assignment failure")
	}
	if queue.markedErrors[leadID] == "" {
		t.Fatalf("expected ledger error message")
	}
}

func TestDistributeLeadInTxLeavesTransactionToCaller(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	queue := newFakeQueue()
	leads := &fakeLeads{}
	bus := &fakeBus{}
	svc := newTestService(&fakeTxBeginner{}, queue, &fakeHistory{}, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, leads, bus)

	tx := &fakeTx{}
	leadID := uuid.New()
	result, err := svc.DistributeLeadInTx(context.Background(), tx, leadID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VendorID != ana.ID {
		t.Fatalf("expected assignment to Ana, got %s", result.VendorName)
	}
	if leads.assigned[leadID] != ana.ID {
		t.Fatalf("expected lead assigned through the caller's transaction")
	}
	if tx.committed || tx.rolledBack {
		t.Fatalf("expected the caller's transaction untouched, committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
	if names := bus.names(); len(names) != 0 {
		t.Fatalf("expected event publication left to the caller, got %v", names)
	}
}

func TestDistributeLeadInTxRecordsFailureWithoutRollback(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	queue := newFakeQueue()
	leads := &fakeLeads{assignErr: errors.New("lead row gone")}
	svc := newTestService(&fakeTxBeginner{}, queue, &fakeHistory{}, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, leads, &fakeBus{})

	tx := &fakeTx{}
	leadID := uuid.New()
	if _, err := svc.DistributeLeadInTx(context.Background(), tx, leadID, nil); err == nil {
		t.Fatalf("expected assignment failure to surface")
	}
	if tx.committed || tx.rolledBack {
		t.Fatalf("expected the caller's transaction untouched on failure")
	}
	if _, ok := queue.markedErrors[leadID]; !ok {
		t.Fatalf("expected the ledger error write despite the caller owning the transaction")
	}
}

func TestEnqueueIsIdempotent(t *testing.T) {
	queue := newFakeQueue()
	svc := newTestService(&fakeTxBeginner{}, queue, &fakeHistory{}, &fakeVendors{}, &fakeLeads{}, &fakeBus{})

	leadID := uuid.New()
	if _, err := svc.Enqueue(context.Background(), leadID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	queue.MarkError(context.Background(), leadID, "previous failure")

	entry, err := svc.Enqueue(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != string(repository.StatusPending) {
		t.Fatalf("expected re-enqueue to reset status to pending, got %s", entry.Status)
	}
	if entry.ErrorMessage != nil {
		t.Fatalf("expected re-enqueue to clear the error message")
	}
}

func TestDistributeAllContinuesPastFailures(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	good := uuid.New()
	bad := uuid.New()
	queue := newFakeQueue()
	queue.entries[bad] = repository.QueueEntry{
		LeadID:       bad,
		Status:       repository.StatusDistributed,
		NextVendorID: nil,
	}

	// The bad lead has a distributed entry with no vendor; assignment for it
	// proceeds, so force failure through the lead store instead.
	leads := &fakeLeads{unassigned: []leadsrepo.Lead{{ID: bad}, {ID: good}}}
	calls := 0
	failing := &selectiveFailLeads{inner: leads, failFor: bad, calls: &calls}
	svc := newTestService(&fakeTxBeginner{}, queue, &fakeHistory{}, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, failing, &fakeBus{})

	result, err := svc.DistributeAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected both leads processed, got %d", result.Processed)
	}
	if result.Distributed != 1 {
		t.Fatalf("expected one successful distribution, got %d", result.Distributed)
	}
}

type selectiveFailLeads struct {
	inner   *fakeLeads
	failFor uuid.UUID
	calls   *int
}

func (s *selectiveFailLeads) ListUnassigned(ctx context.Context) ([]leadsrepo.Lead, error) {
	return s.inner.ListUnassigned(ctx)
}

func (s *selectiveFailLeads) AssignOwner(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) (bool, error) {
	*s.calls++
	if leadID == s.failFor {
		return false, errors.New("forced failure")
	}
	return s.inner.AssignOwner(ctx, tx, leadID, vendorID, qualifierID)
}

func TestPreviewNextDoesNotMutate(t *testing.T) {
	ana := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	queue := newFakeQueue()
	history := &fakeHistory{}
	leads := &fakeLeads{}
	svc := newTestService(&fakeTxBeginner{}, queue, history, &fakeVendors{active: []vendorsrepo.Vendor{ana}}, leads, &fakeBus{})

	preview, err := svc.PreviewNext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview == nil || preview.VendorID != ana.ID {
		t.Fatalf("expected preview of next vendor")
	}
	if len(history.recorded) != 0 || len(leads.assigned) != 0 || len(queue.distributedTo) != 0 {
		t.Fatalf("expected preview to mutate nothing")
	}
}

func TestPreviewNextReturnsNilWithoutVendors(t *testing.T) {
	svc := newTestService(&fakeTxBeginner{}, newFakeQueue(), &fakeHistory{}, &fakeVendors{}, &fakeLeads{}, &fakeBus{})

	preview, err := svc.PreviewNext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview != nil {
		t.Fatalf("expected nil preview for empty roster")
	}
}
