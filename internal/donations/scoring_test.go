package donations

import (
	"testing"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

func TestPointsFor(t *testing.T) {
	cases := []struct {
		name     string
		volume   enums.DonationVolume
		priority enums.DonationPriority
		want     int
	}{
		{name: "small low", volume: enums.DonationVolumeSmall, priority: enums.DonationPriorityLow, want: 15},
		{name: "small high", volume: enums.DonationVolumeSmall, priority: enums.DonationPriorityHigh, want: 25},
		{name: "medium medium", volume: enums.DonationVolumeMedium, priority: enums.DonationPriorityMedium, want: 30},
		{name: "large high", volume: enums.DonationVolumeLarge, priority: enums.DonationPriorityHigh, want: 60},
		{name: "large low", volume: enums.DonationVolumeLarge, priority: enums.DonationPriorityLow, want: 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointsFor(tc.volume, tc.priority); got != tc.want {
				t.Fatalf("PointsFor(%s, %s) = %d, want %d", tc.volume, tc.priority, got, tc.want)
			}
		})
	}
}

func TestServingsFor(t *testing.T) {
	cases := []struct {
		volume enums.DonationVolume
		want   int
	}{
		{volume: enums.DonationVolumeSmall, want: 15},
		{volume: enums.DonationVolumeMedium, want: 35},
		{volume: enums.DonationVolumeLarge, want: 75},
	}

	for _, tc := range cases {
		if got := ServingsFor(tc.volume); got != tc.want {
			t.Fatalf("ServingsFor(%s) = %d, want %d", tc.volume, got, tc.want)
		}
	}
}
