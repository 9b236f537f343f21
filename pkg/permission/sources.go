package permission

import "github.com/Krajiyah/beacon-sdk/pkg/models"

// LocationAuthorizer is the OS location consent source
type LocationAuthorizer interface {
	Status() models.LocationAuthorization
	// RequestAlways asks the OS for always-on location access; the answer arrives on the
	// change handler
	RequestAlways()
	SetChangeHandler(func(models.LocationAuthorization))
}

// BluetoothAuthorizer is the OS Bluetooth consent and radio state source
type BluetoothAuthorizer interface {
	State() models.ManagerState
	CentralAuthorization() models.Authorization
	PeripheralAuthorization() models.Authorization
	// PromptCentral and PromptPeripheral make the OS show its consent dialog. Neither
	// reports completion.
	PromptCentral()
	PromptPeripheral()
}

// bluetoothSnapshotter is implemented by sources that can read radio state and both
// authorizations with one native query. CheckStatus prefers it.
type bluetoothSnapshotter interface {
	Snapshot() (state models.ManagerState, central, peripheral models.Authorization)
}

// desktopLocation is used where the OS puts no location gate in front of Bluetooth
type desktopLocation struct{}

func (desktopLocation) Status() models.LocationAuthorization {
	return models.LocationAuthorizedAlways
}
func (desktopLocation) RequestAlways()                                      {}
func (desktopLocation) SetChangeHandler(func(models.LocationAuthorization)) {}

func locationStatus(a models.LocationAuthorization) models.PermissionStatus {
	switch a {
	case models.LocationAuthorizedAlways:
		return models.AuthorizedAlways
	case models.LocationAuthorizedWhenInUse:
		return models.AuthorizedWhenInUse
	case models.LocationDenied:
		return models.Denied
	case models.LocationRestricted:
		return models.Restricted
	}
	return models.NotDetermined
}

func managerStatus(s models.ManagerState) models.PermissionStatus {
	switch s {
	case models.ManagerStatePoweredOn:
		return models.Authorized
	case models.ManagerStatePoweredOff:
		return models.PoweredOff
	case models.ManagerStateUnauthorized:
		return models.Denied
	case models.ManagerStateUnsupported:
		return models.Unsupported
	case models.ManagerStateResetting:
		return models.Resetting
	}
	return models.Unknown
}

func authorizationStatus(a models.Authorization) models.PermissionStatus {
	switch a {
	case models.AuthorizationAllowedAlways:
		return models.Authorized
	case models.AuthorizationDenied:
		return models.Denied
	case models.AuthorizationRestricted:
		return models.Restricted
	}
	return models.NotDetermined
}
