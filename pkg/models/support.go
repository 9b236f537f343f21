package models

// SupportCode is the result of a transmission support probe; 0 means supported
type SupportCode int

const (
	// Supported indicates beacons can be transmitted
	Supported SupportCode = iota
	// NotSupportedPlatform indicates the operating system has no advertising backend
	NotSupportedPlatform
	// NotSupportedBLE indicates there is no low energy capable radio
	NotSupportedBLE
	// NotSupportedMultipleAdvertisements indicates the radio cannot run another advertising set
	NotSupportedMultipleAdvertisements
	// NotSupportedCannotGetAdvertiser indicates the advertiser could not be opened
	NotSupportedCannotGetAdvertiser
	// NotSupportedCannotGetAdvertiserMultipleAdvertisements indicates the advertiser is busy with other sets
	NotSupportedCannotGetAdvertiserMultipleAdvertisements
)

func (c SupportCode) String() string {
	names := []string{
		"Supported", "NotSupportedPlatform", "NotSupportedBLE", "NotSupportedMultipleAdvertisements",
		"NotSupportedCannotGetAdvertiser", "NotSupportedCannotGetAdvertiserMultipleAdvertisements",
	}
	if c < 0 || int(c) >= len(names) {
		return "Unknown"
	}
	return names[c]
}
