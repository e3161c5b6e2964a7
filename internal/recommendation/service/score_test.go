package service

import (
	"strings"
	"testing"
)

func intPtr(v int) *int         { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestScoreVendorSpecialtyMatchIsCaseAndTrimInsensitive(t *testing.T) {
	b, reasons := scoreVendor(signalInput{
		ServiceType: "  Energia Solar ",
		Specialties: []string{"energia solar"},
	})
	if b.Specialty != maxSpecialtyScore {
		t.Fatalf("expected full specialty score, got %v", b.Specialty)
	}
	if len(reasons) == 0 || !strings.Contains(reasons[0], "Especialista") {
		t.Fatalf("expected specialty reason fragment, got %v", reasons)
	}
}

func TestScoreVendorNoSpecialtyMatchScoresZero(t *testing.T) {
	b, _ := scoreVendor(signalInput{
		ServiceType: "energia solar",
		Specialties: []string{"aquecimento"},
	})
	if b.Specialty != 0 {
		t.Fatalf("expected zero specialty score, got %v", b.Specialty)
	}
}

func TestWorkloadScoreDefaultsWithoutCapacity(t *testing.T) {
	if got := workloadScore(17, nil); got != maxWorkloadScore {
		t.Fatalf("expected flat %v without capacity, got %v", maxWorkloadScore, got)
	}
}

func TestWorkloadScoreScalesWithFreeCapacity(t *testing.T) {
	if got := workloadScore(0, intPtr(10)); got != maxWorkloadScore {
		t.Fatalf("expected full score for empty load, got %v", got)
	}
	if got := workloadScore(5, intPtr(10)); got != maxWorkloadScore/2 {
		t.Fatalf("expected half score at half load, got %v", got)
	}
	if got := workloadScore(10, intPtr(10)); got != 0 {
		t.Fatalf("expected zero at capacity, got %v", got)
	}
	if got := workloadScore(15, intPtr(10)); got != 0 {
		t.Fatalf("expected zero over capacity, got %v", got)
	}
}

func TestResponseSpeedSteps(t *testing.T) {
	cases := []struct {
		minutes float64
		want    float64
	}{
		{10, 10},
		{30, 10},
		{31, 8},
		{60, 8},
		{90, 6},
		{120, 6},
		{200, 4},
		{240, 4},
		{400, 2},
		{480, 2},
		{481, 0},
	}
	for _, c := range cases {
		if got := responseSpeedScore(c.minutes); got != c.want {
			t.Fatalf("mean %v min: expected %v, got %v", c.minutes, c.want, got)
		}
	}
}

func TestScoreVendorTotalNeverExceedsBounds(t *testing.T) {
	b, _ := scoreVendor(signalInput{
		ServiceType:     "energia solar",
		Specialties:     []string{"energia solar"},
		CurrentLoad:     0,
		MaxLoad:         nil,
		LeadsTotal:      10,
		LeadsConverted:  10,
		MeanResponseMin: floatPtr(5),
		MeanRating:      floatPtr(5),
	})
	if total := b.total(); total < 0 || total > maxTotalScore {
		t.Fatalf("expected total within [0,100], got %v", total)
	}
	if b.total() != maxTotalScore {
		t.Fatalf("expected a perfect vendor to hit the cap, got %v", b.total())
	}
}

// A vendor with nothing configured and no history still scores at least the
// workload default.
func TestScoreVendorBareVendorScoresWorkloadFloor(t *testing.T) {
	b, _ := scoreVendor(signalInput{ServiceType: "energia solar"})
	if total := b.total(); total < maxWorkloadScore {
		t.Fatalf("expected at least %v for a bare vendor, got %v", maxWorkloadScore, total)
	}
	if b.Specialty != 0 || b.Conversion != 0 || b.ResponseSpeed != 0 || b.Rating != 0 {
		t.Fatalf("expected only the workload signal to fire: %+v", b)
	}
}

func TestScoreVendorConversionProportional(t *testing.T) {
	b, _ := scoreVendor(signalInput{
		ServiceType:    "x",
		LeadsTotal:     4,
		LeadsConverted: 1,
	})
	if b.Conversion != maxConversionScore/4 {
		t.Fatalf("expected proportional conversion score, got %v", b.Conversion)
	}
}

func TestScoreVendorRatingProportional(t *testing.T) {
	b, _ := scoreVendor(signalInput{
		ServiceType: "x",
		MeanRating:  floatPtr(4),
	})
	if b.Rating != maxRatingScore*4/5 {
		t.Fatalf("expected proportional rating score, got %v", b.Rating)
	}
}

func TestScoreVendorReasonIsPipeJoinable(t *testing.T) {
	_, reasons := scoreVendor(signalInput{
		ServiceType:     "energia solar",
		Specialties:     []string{"energia solar"},
		CurrentLoad:     2,
		MaxLoad:         intPtr(10),
		LeadsTotal:      10,
		LeadsConverted:  6,
		MeanResponseMin: floatPtr(45),
		MeanRating:      floatPtr(4.5),
	})
	if len(reasons) != 5 {
		t.Fatalf("expected all five reason fragments, got %v", reasons)
	}
	joined := strings.Join(reasons, " | ")
	if strings.Count(joined, "|") != 4 {
		t.Fatalf("expected pipe-joined reason, got %q", joined)
	}
}
