package util

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// D-Bus error names BlueZ answers with
const (
	DBusAccessDenied   = "org.freedesktop.DBus.Error.AccessDenied"
	DBusServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	DBusUnknownObject  = "org.freedesktop.DBus.Error.UnknownObject"
	BluezNotAuthorized = "org.bluez.Error.NotAuthorized"
	BluezNotPermitted  = "org.bluez.Error.NotPermitted"
	BluezNotReady      = "org.bluez.Error.NotReady"
	BluezAlreadyExists = "org.bluez.Error.AlreadyExists"
	BluezNotSupported  = "org.bluez.Error.NotSupported"
	BluezFailed        = "org.bluez.Error.Failed"
)

// DBusErrorName returns the D-Bus error name behind err, or "" when err did not come from D-Bus
func DBusErrorName(err error) string {
	switch e := errors.Cause(err).(type) {
	case dbus.Error:
		return e.Name
	case *dbus.Error:
		return e.Name
	}
	return ""
}
