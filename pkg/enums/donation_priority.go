package enums

import "fmt"

// DonationPriority is the urgency bucket of a donation.
type DonationPriority string

const (
	DonationPriorityHigh   DonationPriority = "high"
	DonationPriorityMedium DonationPriority = "medium"
	DonationPriorityLow    DonationPriority = "low"
)

var validDonationPriorities = []DonationPriority{
	DonationPriorityHigh,
	DonationPriorityMedium,
	DonationPriorityLow,
}

// String implements fmt.Stringer.
func (d DonationPriority) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationPriority.
func (d DonationPriority) IsValid() bool {
	for _, candidate := range validDonationPriorities {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDonationPriority converts raw input into a DonationPriority.
func ParseDonationPriority(value string) (DonationPriority, error) {
	for _, candidate := range validDonationPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation priority %q", value)
}
