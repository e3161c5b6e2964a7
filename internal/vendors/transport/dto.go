package transport

import "github.com/google/uuid"

// CreateVendorRequest contains data for registering a vendor.
type CreateVendorRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=200"`
	Specialties        []string `json:"specialties,omitempty" validate:"omitempty,dive,min=1,max=100"`
	MaxConcurrentLeads *int     `json:"maxConcurrentLeads,omitempty" validate:"omitempty,min=1"`
}

// UpdateVendorRequest contains data for updating a vendor's configuration.
type UpdateVendorRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Specialties        []string `json:"specialties,omitempty" validate:"omitempty,dive,min=1,max=100"`
	MaxConcurrentLeads *int     `json:"maxConcurrentLeads,omitempty" validate:"omitempty,min=1"`
}

// SetActiveRequest toggles a vendor's active flag.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// VendorResponse represents a vendor in API responses.
type VendorResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Specialties        []string  `json:"specialties"`
	MaxConcurrentLeads *int      `json:"maxConcurrentLeads,omitempty"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

// VendorListResponse wraps a list of vendors.
type VendorListResponse struct {
	Items []VendorResponse `json:"items"`
	Total int              `json:"total"`
}
