package models

import (
	"github.com/bradfitz/slice"
)

// PermissionStatus is the authorization level the OS grants for one capability
type PermissionStatus int

const (
	// Unknown is reported when the OS has not published a state yet
	Unknown PermissionStatus = iota
	Authorized
	AuthorizedAlways
	AuthorizedWhenInUse
	Denied
	Restricted
	NotDetermined
	PoweredOff
	Unsupported
	Resetting
)

var permissionStatusNames = map[PermissionStatus]string{
	Unknown:             "UNKNOWN",
	Authorized:          "AUTHORIZED",
	AuthorizedAlways:    "AUTHORIZED_ALWAYS",
	AuthorizedWhenInUse: "AUTHORIZED_WHEN_IN_USE",
	Denied:              "DENIED",
	Restricted:          "RESTRICTED",
	NotDetermined:       "NOT_DETERMINED",
	PoweredOff:          "POWERED_OFF",
	Unsupported:         "UNSUPPORTED",
	Resetting:           "RESETTING",
}

func (s PermissionStatus) String() string {
	if name, ok := permissionStatusNames[s]; ok {
		return name
	}
	return permissionStatusNames[Unknown]
}

// ParsePermissionStatus is the inverse of String; unrecognised names map to Unknown
func ParsePermissionStatus(name string) PermissionStatus {
	for s, n := range permissionStatusNames {
		if n == name {
			return s
		}
	}
	return Unknown
}

// IsLocationAuthorized reports whether s allows location use at all
func (s PermissionStatus) IsLocationAuthorized() bool {
	return s == AuthorizedAlways || s == AuthorizedWhenInUse
}

// PermissionCategory names one of the capabilities a beacon needs
type PermissionCategory string

const (
	Location           PermissionCategory = "location"
	Bluetooth          PermissionCategory = "bluetooth"
	BluetoothConnect   PermissionCategory = "bluetoothConnect"
	BluetoothAdvertise PermissionCategory = "bluetoothAdvertise"
)

// PermissionCategories lists every category in reporting order
var PermissionCategories = []PermissionCategory{Location, Bluetooth, BluetoothConnect, BluetoothAdvertise}

// Permissions maps every category to its current status
type Permissions map[PermissionCategory]PermissionStatus

// NewPermissions returns a mapping with every category set to NotDetermined
func NewPermissions() Permissions {
	p := Permissions{}
	for _, c := range PermissionCategories {
		p[c] = NotDetermined
	}
	return p
}

// ToMap renders the mapping the way the command channel reports it
func (p Permissions) ToMap() map[string]string {
	out := map[string]string{}
	for _, c := range PermissionCategories {
		status, ok := p[c]
		if !ok {
			status = NotDetermined
		}
		out[string(c)] = status.String()
	}
	return out
}

// Categories returns the categories present in p sorted by name
func (p Permissions) Categories() []PermissionCategory {
	out := make([]PermissionCategory, 0, len(p))
	for c := range p {
		out = append(out, c)
	}
	slice.Sort(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
