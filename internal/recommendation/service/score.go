package service

import (
	"fmt"
	"math"
	"strings"
)

// Signal caps. Each sub-score is capped independently and the sum is capped
// at maxTotalScore.
const (
	maxSpecialtyScore  = 40.0
	maxWorkloadScore   = 25.0
	maxConversionScore = 20.0
	maxResponseScore   = 10.0
	maxRatingScore     = 5.0
	maxTotalScore      = 100.0
)

// signalInput carries everything the scoring function needs for one vendor.
// All fields are plain values so the function stays pure and table-testable.
type signalInput struct {
	ServiceType     string
	Specialties     []string
	CurrentLoad     int
	MaxLoad         *int
	LeadsTotal      int
	LeadsConverted  int
	MeanResponseMin *float64
	MeanRating      *float64
}

// breakdown is the per-signal decomposition of a vendor's score.
type breakdown struct {
	Specialty     float64
	Workload      float64
	Conversion    float64
	ResponseSpeed float64
	Rating        float64
}

func (b breakdown) total() float64 {
	return math.Min(b.Specialty+b.Workload+b.Conversion+b.ResponseSpeed+b.Rating, maxTotalScore)
}

// scoreVendor computes the five weighted signals for a vendor against a lead's
// service type, plus the cosmetic reason fragments for whichever signals fired.
func scoreVendor(in signalInput) (breakdown, []string) {
	var b breakdown
	var reasons []string

	if matched, name := specialtyMatch(in.ServiceType, in.Specialties); matched {
		b.Specialty = maxSpecialtyScore
		reasons = append(reasons, fmt.Sprintf("Especialista em %s", name))
	}

	b.Workload = workloadScore(in.CurrentLoad, in.MaxLoad)
	if in.MaxLoad != nil {
		reasons = append(reasons, fmt.Sprintf("Carga atual: %d/%d", in.CurrentLoad, *in.MaxLoad))
	}

	if in.LeadsTotal > 0 {
		rate := float64(in.LeadsConverted) / float64(in.LeadsTotal)
		b.Conversion = math.Min(maxConversionScore*rate, maxConversionScore)
		reasons = append(reasons, fmt.Sprintf("Conversão: %.0f%%", rate*100))
	}

	if in.MeanResponseMin != nil {
		b.ResponseSpeed = responseSpeedScore(*in.MeanResponseMin)
		if b.ResponseSpeed > 0 {
			reasons = append(reasons, fmt.Sprintf("Resposta média: %.0fmin", *in.MeanResponseMin))
		}
	}

	if in.MeanRating != nil {
		b.Rating = math.Min(maxRatingScore*(*in.MeanRating/5), maxRatingScore)
		reasons = append(reasons, fmt.Sprintf("Avaliação: %.1f/5", *in.MeanRating))
	}

	return b, reasons
}

// specialtyMatch checks the lead's service type against the vendor's
// configured specialties, case and whitespace insensitive. Returns the
// matched specialty as configured for display.
func specialtyMatch(serviceType string, specialties []string) (bool, string) {
	want := strings.ToLower(strings.TrimSpace(serviceType))
	if want == "" {
		return false, ""
	}
	for _, s := range specialties {
		if strings.ToLower(strings.TrimSpace(s)) == want {
			return true, strings.TrimSpace(s)
		}
	}
	return false, ""
}

// workloadScore rewards available capacity. Vendors without a configured
// limit get the full signal; vendors at or over capacity get zero.
func workloadScore(current int, max *int) float64 {
	if max == nil || *max <= 0 {
		return maxWorkloadScore
	}
	if current >= *max {
		return 0
	}
	return maxWorkloadScore * (1 - float64(current)/float64(*max))
}

// responseSpeedScore is a step function on mean minutes to first contact.
func responseSpeedScore(meanMinutes float64) float64 {
	switch {
	case meanMinutes <= 30:
		return 10
	case meanMinutes <= 60:
		return 8
	case meanMinutes <= 120:
		return 6
	case meanMinutes <= 240:
		return 4
	case meanMinutes <= 480:
		return 2
	default:
		return 0
	}
}
