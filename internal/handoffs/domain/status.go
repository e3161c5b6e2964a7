package domain

import "fmt"

// Status is the handoff lifecycle state. Pending is the only initial state;
// accepted and rejected are both terminal for the status field, though the
// record keeps accumulating first-contact and feedback data afterward.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusPending, StatusAccepted, StatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("invalid handoff status %q", value)
	}
}

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
