package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/vendors/repository"
	"salesdesk_backend/internal/vendors/transport"
	"salesdesk_backend/platform/logger"
)

// Service provides business logic for the vendor directory.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new vendor directory service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a vendor by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.VendorResponse, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.VendorResponse{}, err
	}
	return toResponse(v), nil
}

// List retrieves all vendors.
func (s *Service) List(ctx context.Context) (transport.VendorListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return transport.VendorListResponse{}, err
	}
	return toListResponse(items), nil
}

// ListActive retrieves only active vendors.
func (s *Service) ListActive(ctx context.Context) (transport.VendorListResponse, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return transport.VendorListResponse{}, err
	}
	return toListResponse(items), nil
}

// Create registers a new vendor. Specialties are trimmed and de-duplicated so
// the recommendation engine's exact-match comparisons stay meaningful.
func (s *Service) Create(ctx context.Context, req transport.CreateVendorRequest) (transport.VendorResponse, error) {
	v, err := s.repo.Create(ctx, repository.CreateParams{
		Name:               strings.TrimSpace(req.Name),
		Specialties:        normalizeSpecialties(req.Specialties),
		MaxConcurrentLeads: req.MaxConcurrentLeads,
	})
	if err != nil {
		return transport.VendorResponse{}, err
	}

	s.log.Info("vendor registered", "vendorId", v.ID, "name", v.Name)
	return toResponse(v), nil
}

// Update modifies a vendor's configuration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateVendorRequest) (transport.VendorResponse, error) {
	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		name = &trimmed
	}

	v, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:                 id,
		Name:               name,
		Specialties:        normalizeSpecialties(req.Specialties),
		MaxConcurrentLeads: req.MaxConcurrentLeads,
	})
	if err != nil {
		return transport.VendorResponse{}, err
	}
	return toResponse(v), nil
}

// SetActive toggles whether a vendor participates in routing.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	if err := s.repo.SetActive(ctx, id, isActive); err != nil {
		return err
	}
	s.log.Info("vendor active flag changed", "vendorId", id, "isActive", isActive)
	return nil
}

func normalizeSpecialties(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func toResponse(v repository.Vendor) transport.VendorResponse {
	return transport.VendorResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Specialties:        v.Specialties,
		MaxConcurrentLeads: v.MaxConcurrentLeads,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          v.UpdatedAt.Format(time.RFC3339),
	}
}

func toListResponse(items []repository.Vendor) transport.VendorListResponse {
	responses := make([]transport.VendorResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.VendorListResponse{Items: responses, Total: len(responses)}
}
