package enums

import "fmt"

// ActivityAction tags an append-only activity log entry.
type ActivityAction string

const (
	ActivityDonationCreated   ActivityAction = "donation_created"
	ActivityDonationActive    ActivityAction = "donation_active"
	ActivityDonationCompleted ActivityAction = "donation_completed"
	ActivityDonationDeclined  ActivityAction = "donation_declined"
	ActivityNGOCreated        ActivityAction = "ngo_created"
	ActivityNGODeleted        ActivityAction = "ngo_deleted"
	ActivityUserRegistered    ActivityAction = "user_registered"
)

var validActivityActions = []ActivityAction{
	ActivityDonationCreated,
	ActivityDonationActive,
	ActivityDonationCompleted,
	ActivityDonationDeclined,
	ActivityNGOCreated,
	ActivityNGODeleted,
	ActivityUserRegistered,
}

// DonationActivityAction returns the action tag recorded when a donation
// enters the given status.
func DonationActivityAction(status DonationStatus) ActivityAction {
	return ActivityAction("donation_" + string(status))
}

// String implements fmt.Stringer.
func (a ActivityAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityAction.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into an ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
