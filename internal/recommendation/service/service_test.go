package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	handoffsrepo "salesdesk_backend/internal/handoffs/repository"
	"salesdesk_backend/internal/leads/repository"
	vendorsrepo "salesdesk_backend/internal/vendors/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

type fakeVendors struct {
	active []vendorsrepo.Vendor
}

func (f *fakeVendors) ListActive(context.Context) ([]vendorsrepo.Vendor, error) {
	return f.active, nil
}

type fakeLeads struct {
	lead  repository.Lead
	loads map[uuid.UUID]int
	stats map[uuid.UUID]repository.ConversionStats
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	if f.lead.ID != id {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return f.lead, nil
}

func (f *fakeLeads) CountActiveByOwner(_ context.Context, vendorID uuid.UUID, _ []string) (int, error) {
	return f.loads[vendorID], nil
}

func (f *fakeLeads) ConversionStatsSince(_ context.Context, vendorID uuid.UUID, _ time.Time) (repository.ConversionStats, error) {
	return f.stats[vendorID], nil
}

type fakeHandoffStats struct {
	response map[uuid.UUID]*float64
	rating   map[uuid.UUID]*float64
}

func (f *fakeHandoffStats) ResponseStatsSince(_ context.Context, vendorID uuid.UUID, _ time.Time) (handoffsrepo.ResponseStats, error) {
	return handoffsrepo.ResponseStats{MeanMinutes: f.response[vendorID]}, nil
}

func (f *fakeHandoffStats) RatingStatsSince(_ context.Context, vendorID uuid.UUID, _ time.Time) (handoffsrepo.RatingStats, error) {
	return handoffsrepo.RatingStats{Mean: f.rating[vendorID]}, nil
}

func testLead(serviceType string) repository.Lead {
	return repository.Lead{ID: uuid.New(), Name: "Cliente Teste", ServiceType: serviceType}
}

func TestRecommendVendorsRanksSpecialistFirst(t *testing.T) {
	specialist := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", Specialties: []string{"energia solar"}, IsActive: true}
	generalist := vendorsrepo.Vendor{ID: uuid.New(), Name: "Bruno", IsActive: true}
	lead := testLead("energia solar")

	svc := New(
		&fakeVendors{active: []vendorsrepo.Vendor{generalist, specialist}},
		&fakeLeads{lead: lead},
		&fakeHandoffStats{},
		logger.New("test"),
	)

	resp, err := svc.RecommendVendors(context.Background(), lead.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected both vendors ranked, got %d", len(resp.Items))
	}
	if resp.Items[0].VendorID != specialist.ID {
		t.Fatalf("expected specialist ranked first")
	}
	if resp.Items[0].Score <= resp.Items[1].Score {
		t.Fatalf("expected specialist to outscore generalist")
	}
}

func TestRecommendVendorsTieBrokenByName(t *testing.T) {
	a := vendorsrepo.Vendor{ID: uuid.New(), Name: "Bruno", IsActive: true}
	b := vendorsrepo.Vendor{ID: uuid.New(), Name: "Ana", IsActive: true}
	lead := testLead("energia solar")

	svc := New(
		&fakeVendors{active: []vendorsrepo.Vendor{a, b}},
		&fakeLeads{lead: lead},
		&fakeHandoffStats{},
		logger.New("test"),
	)

	resp, err := svc.RecommendVendors(context.Background(), lead.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Items[0].Name != "Ana" || resp.Items[1].Name != "Bruno" {
		t.Fatalf("expected name ascending tie-break, got %s then %s", resp.Items[0].Name, resp.Items[1].Name)
	}
}

func TestRecommendVendorsScoreBounds(t *testing.T) {
	var roster []vendorsrepo.Vendor
	for _, name := range []string{"Ana", "Bruno", "Carla", "Davi"} {
		roster = append(roster, vendorsrepo.Vendor{ID: uuid.New(), Name: name, IsActive: true})
	}
	lead := testLead("energia solar")

	five := 5.0
	fast := 10.0
	stats := &fakeHandoffStats{
		response: map[uuid.UUID]*float64{roster[0].ID: &fast},
		rating:   map[uuid.UUID]*float64{roster[0].ID: &five},
	}
	leads := &fakeLeads{
		lead:  lead,
		stats: map[uuid.UUID]repository.ConversionStats{roster[0].ID: {Total: 10, Converted: 10}},
	}
	roster[0].Specialties = []string{"energia solar"}

	svc := New(&fakeVendors{active: roster}, leads, stats, logger.New("test"))

	resp, err := svc.RecommendVendors(context.Background(), lead.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range resp.Items {
		if item.Score < 0 || item.Score > 100 {
			t.Fatalf("score out of bounds for %s: %v", item.Name, item.Score)
		}
		if item.Score < 25 {
			t.Fatalf("bare vendor %s below the workload floor: %v", item.Name, item.Score)
		}
	}
}

func TestRecommendVendorsBadgesTopThree(t *testing.T) {
	var roster []vendorsrepo.Vendor
	for _, name := range []string{"Ana", "Bruno", "Carla", "Davi", "Elisa"} {
		roster = append(roster, vendorsrepo.Vendor{ID: uuid.New(), Name: name, IsActive: true})
	}
	lead := testLead("energia solar")

	svc := New(&fakeVendors{active: roster}, &fakeLeads{lead: lead}, &fakeHandoffStats{}, logger.New("test"))

	resp, err := svc.RecommendVendors(context.Background(), lead.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("expected five entries, got %d", len(resp.Items))
	}
	for i, item := range resp.Items {
		if i < 3 {
			if !strings.HasPrefix(item.Badge, "⭐ Recomendado (") || !strings.HasSuffix(item.Badge, "%)") {
				t.Fatalf("entry %d: expected badge, got %q", i, item.Badge)
			}
		} else if item.Badge != "" {
			t.Fatalf("entry %d: expected no badge, got %q", i, item.Badge)
		}
	}
}

func TestRecommendVendorsHonorsLimit(t *testing.T) {
	var roster []vendorsrepo.Vendor
	for _, name := range []string{"Ana", "Bruno", "Carla", "Davi"} {
		roster = append(roster, vendorsrepo.Vendor{ID: uuid.New(), Name: name, IsActive: true})
	}
	lead := testLead("")

	svc := New(&fakeVendors{active: roster}, &fakeLeads{lead: lead}, &fakeHandoffStats{}, logger.New("test"))

	resp, err := svc.RecommendVendors(context.Background(), lead.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != DefaultLimit {
		t.Fatalf("expected default limit of %d, got %d", DefaultLimit, len(resp.Items))
	}
}

func TestRecommendVendorsUnknownLead(t *testing.T) {
	svc := New(&fakeVendors{}, &fakeLeads{lead: testLead("x")}, &fakeHandoffStats{}, logger.New("test"))

	_, err := svc.RecommendVendors(context.Background(), uuid.New(), 3)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown lead, got %v", err)
	}
}
