package models

// ManagerState is the radio state a Bluetooth manager publishes
type ManagerState int

const (
	ManagerStateUnknown ManagerState = iota
	ManagerStateResetting
	ManagerStateUnsupported
	ManagerStateUnauthorized
	ManagerStatePoweredOff
	ManagerStatePoweredOn
)

func (s ManagerState) String() string {
	switch s {
	case ManagerStateResetting:
		return "resetting"
	case ManagerStateUnsupported:
		return "unsupported"
	case ManagerStateUnauthorized:
		return "unauthorized"
	case ManagerStatePoweredOff:
		return "poweredOff"
	case ManagerStatePoweredOn:
		return "poweredOn"
	}
	return "unknown"
}

// Authorization is the per app Bluetooth authorization of a manager role
type Authorization int

const (
	AuthorizationNotDetermined Authorization = iota
	AuthorizationRestricted
	AuthorizationDenied
	AuthorizationAllowedAlways
)

// LocationAuthorization is the location authorization granted to the app
type LocationAuthorization int

const (
	LocationNotDetermined LocationAuthorization = iota
	LocationRestricted
	LocationDenied
	LocationAuthorizedAlways
	LocationAuthorizedWhenInUse
)
