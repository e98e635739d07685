package enums

import "fmt"

// DonationVolume is the coarse quantity bucket of a donation.
type DonationVolume string

const (
	DonationVolumeSmall  DonationVolume = "small"
	DonationVolumeMedium DonationVolume = "medium"
	DonationVolumeLarge  DonationVolume = "large"
)

var validDonationVolumes = []DonationVolume{
	DonationVolumeSmall,
	DonationVolumeMedium,
	DonationVolumeLarge,
}

// String implements fmt.Stringer.
func (d DonationVolume) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationVolume.
func (d DonationVolume) IsValid() bool {
	for _, candidate := range validDonationVolumes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDonationVolume converts raw input into a DonationVolume.
func ParseDonationVolume(value string) (DonationVolume, error) {
	for _, candidate := range validDonationVolumes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation volume %q", value)
}
