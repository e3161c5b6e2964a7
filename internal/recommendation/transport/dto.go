package transport

import "github.com/google/uuid"

// ScoreBreakdown decomposes a recommendation score per signal.
type ScoreBreakdown struct {
	Specialty     float64 `json:"specialty"`
	Workload      float64 `json:"workload"`
	Conversion    float64 `json:"conversion"`
	ResponseSpeed float64 `json:"responseSpeed"`
	Rating        float64 `json:"rating"`
}

// Recommendation is one ranked vendor suggestion for a lead.
type Recommendation struct {
	VendorID    uuid.UUID      `json:"vendorId"`
	Name        string         `json:"name"`
	Score       float64        `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	CurrentLoad int            `json:"currentLoad"`
	MaxLoad     *int           `json:"maxLoad,omitempty"`
	Reason      string         `json:"reason"`
	Badge       string         `json:"badge,omitempty"`
}

// RecommendationListResponse wraps the ranked suggestions for a lead.
type RecommendationListResponse struct {
	LeadID uuid.UUID        `json:"leadId"`
	Items  []Recommendation `json:"items"`
	Total  int              `json:"total"`
}
