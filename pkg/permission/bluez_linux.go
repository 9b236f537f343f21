//go:build linux
// +build linux

package permission

import (
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/muka/go-bluetooth/api"
)

// NewSystemGateway returns a Gateway backed by the BlueZ default adapter. Linux has no
// location gate in front of Bluetooth, so location always reads as authorized.
func NewSystemGateway(opts Options) *Gateway {
	return NewGateway(desktopLocation{}, bluezAuthorizer{}, opts)
}

// bluezAuthorizer derives consent from what the D-Bus policy lets this process do
type bluezAuthorizer struct{}

var _ bluetoothSnapshotter = bluezAuthorizer{}

func (bluezAuthorizer) State() models.ManagerState {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		return stateFromError(err)
	}
	powered, err := a.GetPowered()
	if err != nil {
		return stateFromError(err)
	}
	if powered {
		return models.ManagerStatePoweredOn
	}
	return models.ManagerStatePoweredOff
}

func stateFromError(err error) models.ManagerState {
	name := util.DBusErrorName(err)
	log.WithError(err).WithField("dbus", name).Debug("bluez adapter unavailable")
	switch name {
	case util.DBusAccessDenied, util.BluezNotAuthorized, util.BluezNotPermitted:
		return models.ManagerStateUnauthorized
	case util.BluezNotReady:
		return models.ManagerStatePoweredOff
	case "", util.DBusServiceUnknown:
		// no adapter registered, or bluetoothd is not running
		return models.ManagerStateUnsupported
	}
	return models.ManagerStateUnknown
}

// authorizationFor derives consent from the adapter state: BlueZ has no per-role grant
func authorizationFor(state models.ManagerState) models.Authorization {
	switch state {
	case models.ManagerStateUnauthorized:
		return models.AuthorizationDenied
	case models.ManagerStateUnsupported, models.ManagerStateUnknown:
		return models.AuthorizationNotDetermined
	}
	return models.AuthorizationAllowedAlways
}

// Snapshot reads the adapter once for all three answers
func (b bluezAuthorizer) Snapshot() (models.ManagerState, models.Authorization, models.Authorization) {
	state := b.State()
	auth := authorizationFor(state)
	return state, auth, auth
}

func (b bluezAuthorizer) CentralAuthorization() models.Authorization {
	return authorizationFor(b.State())
}

func (b bluezAuthorizer) PeripheralAuthorization() models.Authorization {
	return authorizationFor(b.State())
}

func (bluezAuthorizer) PromptCentral() {
	log.Debug("bluez has no consent prompt")
}

func (bluezAuthorizer) PromptPeripheral() {
	log.Debug("bluez has no consent prompt")
}
