// Package domain holds the closed value types of the handoff lifecycle.
// Invalid statuses and urgencies are unrepresentable instead of being
// re-validated at every call site.
package domain

import (
	"fmt"
	"time"
)

// Urgency classifies how quickly the receiving vendor must make first contact.
// Wire values are the Portuguese terms used across the product.
type Urgency string

const (
	UrgencyHigh   Urgency = "alta"
	UrgencyMedium Urgency = "media"
	UrgencyLow    Urgency = "baixa"
)

// slaWindows maps each urgency to its first-contact window.
var slaWindows = map[Urgency]time.Duration{
	UrgencyHigh:   24 * time.Hour,
	UrgencyMedium: 48 * time.Hour,
	UrgencyLow:    72 * time.Hour,
}

// ParseUrgency converts a wire value into an Urgency.
func ParseUrgency(value string) (Urgency, error) {
	u := Urgency(value)
	if _, ok := slaWindows[u]; !ok {
		return "", fmt.Errorf("invalid urgency %q", value)
	}
	return u, nil
}

// SLAWindow returns the first-contact window for the urgency.
func (u Urgency) SLAWindow() time.Duration {
	return slaWindows[u]
}

// Deadline computes the SLA deadline for a handoff created at the given time.
func (u Urgency) Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(u.SLAWindow())
}

// Rank orders urgencies for worklists: alta before media before baixa.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

// String implements fmt.Stringer.
func (u Urgency) String() string { return string(u) }
