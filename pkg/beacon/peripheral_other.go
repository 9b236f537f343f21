//go:build !linux && !darwin
// +build !linux,!darwin

package beacon

import "github.com/Krajiyah/beacon-sdk/pkg/models"

// NewPeripheral returns a Peripheral that cannot create a peripheral manager
func NewPeripheral() *Peripheral {
	return newPeripheral(unsupportedBackend{})
}

type unsupportedBackend struct{}

func (unsupportedBackend) NewManager(PeripheralManagerDelegate) (PeripheralManager, error) {
	return nil, models.ErrUnsupportedPlatformFeature
}

func (unsupportedBackend) Supported() models.SupportCode { return models.NotSupportedPlatform }
