//go:build !linux
// +build !linux

package beacon

import (
	"context"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
)

type unsupportedCoreMethods struct{}

// NewTransmitter returns a Transmitter that reports raw advertising as unsupported
func NewTransmitter(opts TransmitterOptions) *Transmitter {
	return newTransmitter(unsupportedCoreMethods{}, opts)
}

func (unsupportedCoreMethods) Open(time.Duration) error { return models.ErrUnsupportedPlatformFeature }
func (unsupportedCoreMethods) AdvertiseMfgData(context.Context, uint16, []byte) error {
	return models.ErrUnsupportedPlatformFeature
}
func (unsupportedCoreMethods) AdvertiseServiceData16(context.Context, uint16, []byte) error {
	return models.ErrUnsupportedPlatformFeature
}
func (unsupportedCoreMethods) Close() error              { return nil }
func (unsupportedCoreMethods) Probe() models.SupportCode { return models.NotSupportedPlatform }
