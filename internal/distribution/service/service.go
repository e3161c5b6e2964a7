package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/internal/distribution/repository"
	"salesdesk_backend/internal/distribution/transport"
	"salesdesk_backend/internal/events"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

const (
	msgNoActiveVendor    = "no active vendor available"
	msgNoVendorAvailable = "no vendor available for selection"
	msgAssignmentFailed  = "lead assignment failed"
)

// VendorDirectory is the narrow read contract on the vendor roster.
type VendorDirectory interface {
	ListActive(ctx context.Context) ([]vendorsrepo.Vendor, error)
}

// LeadStore is the narrow lead collaborator contract the distributor mutates
// leads through. AssignOwner participates in the distribution transaction.
type LeadStore interface {
	ListUnassigned(ctx context.Context) ([]leadsrepo.Lead, error)
	AssignOwner(ctx context.Context, tx pgx.Tx, leadID, vendorID uuid.UUID, qualifierID *uuid.UUID) (bool, error)
}

// TxBeginner opens distribution transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service is the fair distributor: history-aware round-robin assignment of
// unowned leads across the active vendor roster.
type Service struct {
	db      TxBeginner
	queue   repository.QueueStore
	history repository.AssignmentLog
	vendors VendorDirectory
	leads   LeadStore
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new fair distributor service.
func New(
	db TxBeginner,
	queue repository.QueueStore,
	history repository.AssignmentLog,
	vendors VendorDirectory,
	leads LeadStore,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		db:      db,
		queue:   queue,
		history: history,
		vendors: vendors,
		leads:   leads,
		bus:     bus,
		log:     log,
	}
}

// Enqueue registers a lead in the distribution queue. Idempotent: a repeated
// call resets a prior error state back to pending.
func (s *Service) Enqueue(ctx context.Context, leadID uuid.UUID) (transport.QueueEntryResponse, error) {
	entry, err := s.queue.Upsert(ctx, leadID)
	if err != nil {
		return transport.QueueEntryResponse{}, err
	}
	return toQueueResponse(entry), nil
}

// QueueEntry returns the ledger entry for a lead.
func (s *Service) QueueEntry(ctx context.Context, leadID uuid.UUID) (transport.QueueEntryResponse, error) {
	entry, err := s.queue.Get(ctx, leadID)
	if err != nil {
		return transport.QueueEntryResponse{}, err
	}
	return toQueueResponse(entry), nil
}

// DistributeLead assigns the lead to the next vendor owed one, inside its own
// transaction. On failure the transaction is rolled back and the ledger entry
// is marked with the error through a separate write that survives the rollback.
func (s *Service) DistributeLead(ctx context.Context, leadID uuid.UUID, qualifierID *uuid.UUID) (transport.DistributionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return transport.DistributionResult{}, apperr.Wrap(apperr.KindInternal, "begin distribution transaction", err)
	}

	result, err := s.distribute(ctx, tx, leadID, qualifierID)
	if err != nil {
		_ = tx.Rollback(ctx)
		s.recordFailure(ctx, leadID, err)
		return transport.DistributionResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.recordFailure(ctx, leadID, err)
		return transport.DistributionResult{}, apperr.Wrap(apperr.KindInternal, "commit distribution transaction", err)
	}

	if !result.AlreadyDistributed {
		s.log.DistributionAttempt(leadID.String(), result.VendorID.String(), true, "")
		s.bus.Publish(ctx, events.LeadDistributed{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      result.LeadID,
			VendorID:    result.VendorID,
			VendorName:  result.VendorName,
			QualifierID: qualifierID,
			Attempts:    result.Attempts,
		})
	}

	return result, nil
}

// DistributeLeadInTx runs the distribution inside a caller-owned transaction.
// It never commits or rolls the transaction back; the ledger error write still
// happens immediately so the attempt is visible even if the caller rolls back.
// Event publication is the caller's responsibility after its commit.
func (s *Service) DistributeLeadInTx(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, qualifierID *uuid.UUID) (transport.DistributionResult, error) {
	result, err := s.distribute(ctx, tx, leadID, qualifierID)
	if err != nil {
		s.recordFailure(ctx, leadID, err)
		return transport.DistributionResult{}, err
	}
	return result, nil
}

// DistributeAll routes every currently unowned lead. Individual failures are
// logged and skipped so one bad lead never blocks the rest of the batch.
func (s *Service) DistributeAll(ctx context.Context) (transport.BatchResult, error) {
	unassigned, err := s.leads.ListUnassigned(ctx)
	if err != nil {
		return transport.BatchResult{}, err
	}

	var result transport.BatchResult
	for _, lead := range unassigned {
		result.Processed++
		if _, err := s.DistributeLead(ctx, lead.ID, lead.QualifierID); err != nil {
			s.log.Warn("batch distribution item failed", "leadId", lead.ID, "error", err)
			continue
		}
		result.Distributed++
	}

	s.log.Info("batch distribution finished",
		"processed", result.Processed, "distributed", result.Distributed)
	return result, nil
}

// PreviewNext runs the selection algorithm without mutating anything, for UI
// display of who would receive the next lead. Returns nil when no vendor is
// eligible.
func (s *Service) PreviewNext(ctx context.Context) (*transport.Preview, error) {
	active, err := s.vendors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	stats, err := s.history.StatsByVendor(ctx, vendorIDs(active))
	if err != nil {
		return nil, err
	}

	chosen := selectNextVendor(active, stats)
	if chosen == nil {
		return nil, nil
	}

	return &transport.Preview{
		VendorID:       chosen.Vendor.ID,
		VendorName:     chosen.Vendor.Name,
		LastAssignedAt: chosen.LastAssignedAt,
	}, nil
}

// distribute is the transactional core shared by the owning and joining entry
// points. The row lock taken on the ledger entry serializes concurrent calls
// for the same lead; cross-lead fairness stays soft because overlapping
// transactions read the same history snapshot (an accepted trade-off, distinct
// from the per-lead guarantee).
func (s *Service) distribute(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, qualifierID *uuid.UUID) (transport.DistributionResult, error) {
	entry, err := s.queue.EnsureAndLock(ctx, tx, leadID)
	if err != nil {
		return transport.DistributionResult{}, err
	}

	// A serialized duplicate call finds the entry already distributed and
	// returns the prior assignment untouched.
	if entry.Status == repository.StatusDistributed && entry.NextVendorID != nil {
		vendorName := ""
		if active, lookupErr := s.vendors.ListActive(ctx); lookupErr == nil {
			for _, v := range active {
				if v.ID == *entry.NextVendorID {
					vendorName = v.Name
					break
				}
			}
		}
		return transport.DistributionResult{
			LeadID:             leadID,
			VendorID:           *entry.NextVendorID,
			VendorName:         vendorName,
			Attempts:           entry.Attempts,
			AlreadyDistributed: true,
		}, nil
	}

	active, err := s.vendors.ListActive(ctx)
	if err != nil {
		return transport.DistributionResult{}, err
	}
	if len(active) == 0 {
		return transport.DistributionResult{}, apperr.Unavailable(msgNoActiveVendor)
	}

	stats, err := s.history.StatsByVendor(ctx, vendorIDs(active))
	if err != nil {
		return transport.DistributionResult{}, err
	}

	chosen := selectNextVendor(active, stats)
	if chosen == nil {
		return transport.DistributionResult{}, apperr.Unavailable(msgNoVendorAvailable)
	}

	assigned, err := s.leads.AssignOwner(ctx, tx, leadID, chosen.Vendor.ID, qualifierID)
	if err != nil {
		return transport.DistributionResult{}, err
	}
	if !assigned {
		return transport.DistributionResult{}, apperr.Internal(msgAssignmentFailed)
	}

	if err := s.history.Record(ctx, tx, leadID, chosen.Vendor.ID, qualifierID); err != nil {
		return transport.DistributionResult{}, err
	}

	if err := s.queue.MarkDistributed(ctx, tx, leadID, chosen.Vendor.ID); err != nil {
		return transport.DistributionResult{}, err
	}

	// MarkDistributed increments the stored counter; the lock snapshot is
	// pre-increment, so count this attempt here.
	return transport.DistributionResult{
		LeadID:     leadID,
		VendorID:   chosen.Vendor.ID,
		VendorName: chosen.Vendor.Name,
		Attempts:   entry.Attempts + 1,
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, leadID uuid.UUID, cause error) {
	s.log.DistributionAttempt(leadID.String(), "", false, cause.Error())
	if err := s.queue.MarkError(ctx, leadID, cause.Error()); err != nil {
		s.log.DatabaseError("distribution.queue.mark_error", err)
	}
}

func vendorIDs(vendors []vendorsrepo.Vendor) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(vendors))
	for _, v := range vendors {
		ids = append(ids, v.ID)
	}
	return ids
}

func toQueueResponse(entry repository.QueueEntry) transport.QueueEntryResponse {
	return transport.QueueEntryResponse{
		LeadID:       entry.LeadID,
		Attempts:     entry.Attempts,
		NextVendorID: entry.NextVendorID,
		Status:       string(entry.Status),
		ErrorMessage: entry.ErrorMessage,
		CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    entry.UpdatedAt.Format(time.RFC3339),
	}
}
