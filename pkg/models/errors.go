package models

import "github.com/pkg/errors"

// Failures of a single beacon operation. They never cross the command boundary as
// structured errors: the dispatcher reports every one of them as false.
var (
	ErrInvalidUUID                = errors.New("invalid uuid")
	ErrMissingRequiredField       = errors.New("missing required field")
	ErrInvalidArgument            = errors.New("invalid argument")
	ErrInvalidLayout              = errors.New("invalid beacon layout")
	ErrPermissionDenied           = errors.New("permission denied")
	ErrBluetoothUnavailable       = errors.New("bluetooth unavailable")
	ErrUnsupportedPlatformFeature = errors.New("unsupported platform feature")
	ErrNativeAdvertiseFailure     = errors.New("native advertise failure")
)

// IsKind reports whether err was caused by the given sentinel
func IsKind(err error, kind error) bool {
	return err != nil && errors.Cause(err) == kind
}
