package donations

import "github.com/mealbridge/mealbridge-backend/pkg/enums"

// Points and servings are fixed at creation time from the volume and priority
// declared by the donor. They never change afterwards, even if the scoring
// tables do.
var volumePoints = map[enums.DonationVolume]int{
	enums.DonationVolumeSmall:  15,
	enums.DonationVolumeMedium: 25,
	enums.DonationVolumeLarge:  50,
}

var priorityPoints = map[enums.DonationPriority]int{
	enums.DonationPriorityHigh:   10,
	enums.DonationPriorityMedium: 5,
	enums.DonationPriorityLow:    0,
}

var volumeServings = map[enums.DonationVolume]int{
	enums.DonationVolumeSmall:  15,
	enums.DonationVolumeMedium: 35,
	enums.DonationVolumeLarge:  75,
}

// PointsFor returns the award a completed donation earns its donor.
func PointsFor(volume enums.DonationVolume, priority enums.DonationPriority) int {
	return volumePoints[volume] + priorityPoints[priority]
}

// ServingsFor returns the estimated meal servings for a donation volume.
func ServingsFor(volume enums.DonationVolume) int {
	return volumeServings[volume]
}
