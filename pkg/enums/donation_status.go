package enums

import "fmt"

// DonationStatus tracks the lifecycle of a donation.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusActive    DonationStatus = "active"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusDeclined  DonationStatus = "declined"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusPending,
	DonationStatusActive,
	DonationStatusCompleted,
	DonationStatusDeclined,
}

// allowedDonationTransitions is the exhaustive transition table. Completed
// and declined are terminal and therefore absent as source states.
var allowedDonationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending: {DonationStatusActive, DonationStatusDeclined},
	DonationStatusActive:  {DonationStatusCompleted, DonationStatusDeclined},
}

// DonationStatuses returns every known status in declaration order.
func DonationStatuses() []DonationStatus {
	out := make([]DonationStatus, len(validDonationStatuses))
	copy(out, validDonationStatuses)
	return out
}

// String implements fmt.Stringer.
func (d DonationStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationStatus.
func (d DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this status.
func (d DonationStatus) IsTerminal() bool {
	return len(allowedDonationTransitions[d]) == 0
}

// InFlight reports whether the status counts against a donor's active donations.
func (d DonationStatus) InFlight() bool {
	return d == DonationStatusPending || d == DonationStatusActive
}

// CanTransitionTo reports whether moving from this status to target is allowed.
func (d DonationStatus) CanTransitionTo(target DonationStatus) bool {
	for _, candidate := range allowedDonationTransitions[d] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
