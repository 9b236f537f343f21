package internal

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
)

// Advertisement is one advertise call seen by a DummyDevice
type Advertisement struct {
	Service bool
	ID      uint16
	Data    []byte
}

// DummyDevice stands in for a go-ble HCI device. Advertise calls block until their context
// ends, like the real device, unless AdvertiseErr is set.
type DummyDevice struct {
	mutex          sync.Mutex
	Options        int
	AdvertiseErr   error
	Advertisements []Advertisement
	Stopped        bool
}

// NewDummyDevice returns a device factory that always hands out d
func NewDummyDevice(d *DummyDevice, err error) func(opts ...ble.Option) (*DummyDevice, error) {
	return func(opts ...ble.Option) (*DummyDevice, error) {
		if err != nil {
			return nil, err
		}
		d.mutex.Lock()
		d.Options = len(opts)
		d.Stopped = false
		d.mutex.Unlock()
		return d, nil
	}
}

func (d *DummyDevice) advertise(ctx context.Context, adv Advertisement) error {
	d.mutex.Lock()
	d.Advertisements = append(d.Advertisements, adv)
	err := d.AdvertiseErr
	d.mutex.Unlock()
	if err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *DummyDevice) AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error {
	return d.advertise(ctx, Advertisement{ID: id, Data: b})
}

func (d *DummyDevice) AdvertiseServiceData16(ctx context.Context, id uint16, b []byte) error {
	return d.advertise(ctx, Advertisement{Service: true, ID: id, Data: b})
}

func (d *DummyDevice) Stop() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.Stopped = true
	return nil
}

// Snapshot returns the advertisements so far and whether the device was stopped
func (d *DummyDevice) Snapshot() ([]Advertisement, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	out := make([]Advertisement, len(d.Advertisements))
	copy(out, d.Advertisements)
	return out, d.Stopped
}
