package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	handoffsrepo "salesdesk_backend/internal/handoffs/repository"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/recommendation/transport"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
	"salesdesk_backend/platform/logger"
)

const (
	// DefaultLimit is how many suggestions are returned when the caller
	// does not ask for a specific count.
	DefaultLimit = 3

	// badgeCount is how many top entries get the recommendation badge.
	badgeCount = 3
)

// Trailing windows per signal.
const (
	conversionWindowMonths = 3
	responseWindowDays     = 90
	ratingWindowMonths     = 6
)

// VendorDirectory is the read contract on the vendor roster.
type VendorDirectory interface {
	ListActive(ctx context.Context) ([]vendorsrepo.Vendor, error)
}

// LeadReader provides the lead lookup and per-vendor lead aggregates.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	CountActiveByOwner(ctx context.Context, vendorID uuid.UUID, excludedStatuses []string) (int, error)
	ConversionStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (repository.ConversionStats, error)
}

// HandoffStats provides per-vendor response-speed and rating aggregates.
type HandoffStats interface {
	ResponseStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (handoffsrepo.ResponseStats, error)
	RatingStatsSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (handoffsrepo.RatingStats, error)
}

// Service ranks active vendors against a lead using five weighted signals.
// Read-only: recommendations inform the manual transfer decision, they never
// assign anything.
type Service struct {
	vendors  VendorDirectory
	leads    LeadReader
	handoffs HandoffStats
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new recommendation service.
func New(vendors VendorDirectory, leads LeadReader, handoffs HandoffStats, log *logger.Logger) *Service {
	return &Service{
		vendors:  vendors,
		leads:    leads,
		handoffs: handoffs,
		log:      log,
		now:      time.Now,
	}
}

// RecommendVendors scores every active vendor against the lead and returns
// the top entries, highest score first with name as the deterministic
// tie-break. The badge marks the overall top suggestions even when the
// caller requests more.
func (s *Service) RecommendVendors(ctx context.Context, leadID uuid.UUID, limit int) (transport.RecommendationListResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return transport.RecommendationListResponse{}, err
	}

	active, err := s.vendors.ListActive(ctx)
	if err != nil {
		return transport.RecommendationListResponse{}, err
	}

	now := s.now()
	conversionSince := now.AddDate(0, -conversionWindowMonths, 0)
	responseSince := now.AddDate(0, 0, -responseWindowDays)
	ratingSince := now.AddDate(0, -ratingWindowMonths, 0)

	ranked := make([]transport.Recommendation, 0, len(active))
	for _, vendor := range active {
		in, err := s.collectSignals(ctx, vendor, lead.ServiceType, conversionSince, responseSince, ratingSince)
		if err != nil {
			return transport.RecommendationListResponse{}, err
		}

		b, reasons := scoreVendor(in)
		ranked = append(ranked, transport.Recommendation{
			VendorID: vendor.ID,
			Name:     vendor.Name,
			Score:    b.total(),
			Breakdown: transport.ScoreBreakdown{
				Specialty:     b.Specialty,
				Workload:      b.Workload,
				Conversion:    b.Conversion,
				ResponseSpeed: b.ResponseSpeed,
				Rating:        b.Rating,
			},
			CurrentLoad: in.CurrentLoad,
			MaxLoad:     in.MaxLoad,
			Reason:      strings.Join(reasons, " | "),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})

	for i := 0; i < len(ranked) && i < badgeCount; i++ {
		ranked[i].Badge = fmt.Sprintf("⭐ Recomendado (%.0f%%)", math.Round(ranked[i].Score))
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return transport.RecommendationListResponse{
		LeadID: leadID,
		Items:  ranked,
		Total:  len(ranked),
	}, nil
}

func (s *Service) collectSignals(
	ctx context.Context,
	vendor vendorsrepo.Vendor,
	serviceType string,
	conversionSince, responseSince, ratingSince time.Time,
) (signalInput, error) {
	load, err := s.leads.CountActiveByOwner(ctx, vendor.ID, repository.TerminalStatuses)
	if err != nil {
		return signalInput{}, err
	}

	conv, err := s.leads.ConversionStatsSince(ctx, vendor.ID, conversionSince)
	if err != nil {
		return signalInput{}, err
	}

	resp, err := s.handoffs.ResponseStatsSince(ctx, vendor.ID, responseSince)
	if err != nil {
		return signalInput{}, err
	}

	rating, err := s.handoffs.RatingStatsSince(ctx, vendor.ID, ratingSince)
	if err != nil {
		return signalInput{}, err
	}

	return signalInput{
		ServiceType:     serviceType,
		Specialties:     vendor.Specialties,
		CurrentLoad:     load,
		MaxLoad:         vendor.MaxConcurrentLeads,
		LeadsTotal:      conv.Total,
		LeadsConverted:  conv.Converted,
		MeanResponseMin: resp.MeanMinutes,
		MeanRating:      rating.Mean,
	}, nil
}
