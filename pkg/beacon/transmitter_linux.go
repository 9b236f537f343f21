//go:build linux
// +build linux

package beacon

import (
	"context"
	"sync"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"
)

const (
	advNonConnInd  = 0x03
	allAdvChannels = 0x07
	advUnit        = 625 * time.Microsecond
)

// hciDevice is the part of a go-ble device a transmitter uses
type hciDevice interface {
	AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error
	AdvertiseServiceData16(ctx context.Context, id uint16, b []byte) error
	Stop() error
}

type deviceFactory func(opts ...ble.Option) (hciDevice, error)

func newHCIDevice(opts ...ble.Option) (hciDevice, error) {
	return linux.NewDevice(opts...)
}

// realCoreMethods advertises through the HCI socket of the default controller. device is
// shared by the advertise goroutine, Stop and IsSupported.
type realCoreMethods struct {
	newDevice deviceFactory

	mutex  sync.Mutex
	device hciDevice
	epoch  uint64
}

// NewTransmitter returns a Transmitter backed by the local HCI controller
func NewTransmitter(opts TransmitterOptions) *Transmitter {
	return newTransmitter(&realCoreMethods{newDevice: newHCIDevice}, opts)
}

func advParams(interval time.Duration) cmd.LESetAdvertisingParameters {
	units := uint16(interval / advUnit)
	return cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin:  units,
		AdvertisingIntervalMax:  units,
		AdvertisingType:         advNonConnInd,
		AdvertisingChannelMap:   allAdvChannels,
		AdvertisingFilterPolicy: 0x00,
	}
}

func (m *realCoreMethods) Open(interval time.Duration) error {
	m.mutex.Lock()
	epoch := m.epoch
	m.mutex.Unlock()

	dev, err := m.newDevice(ble.OptAdvParams(advParams(interval)))
	if err != nil {
		return errors.Wrap(err, "linux.NewDevice issue")
	}
	m.mutex.Lock()
	if m.epoch != epoch {
		m.mutex.Unlock()
		// closed while opening
		stopDevice(dev)
		return errors.New("advertiser closed while opening")
	}
	old := m.device
	m.device = dev
	m.mutex.Unlock()
	if old != nil {
		stopDevice(old)
	}
	return nil
}

func stopDevice(dev hciDevice) {
	if err := dev.Stop(); err != nil {
		log.WithError(err).Debug("hci device stop failed")
	}
}

func (m *realCoreMethods) opened() (hciDevice, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.device == nil {
		return nil, errors.New("advertiser is not open")
	}
	return m.device, nil
}

func (m *realCoreMethods) AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error {
	dev, err := m.opened()
	if err != nil {
		return err
	}
	return dev.AdvertiseMfgData(ctx, id, b)
}

func (m *realCoreMethods) AdvertiseServiceData16(ctx context.Context, id uint16, b []byte) error {
	dev, err := m.opened()
	if err != nil {
		return err
	}
	return dev.AdvertiseServiceData16(ctx, id, b)
}

// Close stops the open device and abandons any Open still in flight
func (m *realCoreMethods) Close() error {
	m.mutex.Lock()
	dev := m.device
	m.device = nil
	m.epoch++
	m.mutex.Unlock()
	if dev == nil {
		return nil
	}
	return dev.Stop()
}

func (m *realCoreMethods) Probe() models.SupportCode {
	m.mutex.Lock()
	open := m.device != nil
	m.mutex.Unlock()
	if open {
		return models.Supported
	}
	dev, err := m.newDevice()
	if err != nil {
		log.WithError(err).Debug("hci probe failed")
		return models.NotSupportedCannotGetAdvertiser
	}
	stopDevice(dev)
	return models.Supported
}
