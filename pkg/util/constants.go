package util

import "time"

const (
	// MethodChannelName is the channel on which host applications issue beacon commands
	MethodChannelName = "pl.pszklarska.beaconbroadcast/beacon_state"
	// EventChannelName is the channel on which advertising state changes are streamed
	EventChannelName = "pl.pszklarska.beaconbroadcast/beacon_events"

	// RadiusNetworksManufacturer is the company id used when the caller does not pick one
	RadiusNetworksManufacturer uint16 = 0x0118
	// AppleManufacturer is the company id iBeacon frames are advertised under
	AppleManufacturer uint16 = 0x004C
	// EddystoneServiceUUID is the 16-bit service uuid carrying Eddystone frames
	EddystoneServiceUUID uint16 = 0xFEAA

	// DefaultTransmissionPower is the calibrated RSSI at 1m used when none is given
	DefaultTransmissionPower = -59
	// DefaultAdvertiseMode is the balanced power/latency mode
	DefaultAdvertiseMode = 1

	// MaxAdvertisingPayload is the legacy advertising PDU data limit
	MaxAdvertisingPayload = 31

	// PermissionPromptDelay is how long the permission flow waits for the OS consent prompt
	PermissionPromptDelay = time.Millisecond * 500
)
