//go:build linux
// +build linux

package beacon

import (
	"context"
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/bluez"
	"github.com/muka/go-bluetooth/bluez/profile/adapter"
	"github.com/muka/go-bluetooth/bluez/profile/advertising"
	"github.com/pkg/errors"
)

const advertisementTimeout = 1<<16 - 1

// NewPeripheral returns a Peripheral that registers beacons with BlueZ
func NewPeripheral() *Peripheral {
	return newPeripheral(bluezBackend{})
}

type bluezBackend struct{}

func (bluezBackend) NewManager(delegate PeripheralManagerDelegate) (PeripheralManager, error) {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		return nil, errors.Wrap(classifyDBusError(err), "api.GetDefaultAdapter issue")
	}
	id, err := a.GetAdapterID()
	if err != nil {
		return nil, errors.Wrap(err, "GetAdapterID issue")
	}
	m := &bluezManager{adapter: a, id: id, delegate: delegate, expose: api.ExposeAdvertisement}
	if err := m.watch(); err != nil {
		log.WithError(err).Debug("adapter state changes will not be reported")
	}
	return m, nil
}

func (bluezBackend) Supported() models.SupportCode {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		log.WithError(err).Debug("no bluez adapter")
		return models.NotSupportedBLE
	}
	if _, err := a.GetAdapterID(); err != nil {
		return models.NotSupportedCannotGetAdvertiser
	}
	return models.Supported
}

type exposeFunc func(adapterID string, props *advertising.LEAdvertisement1Properties, timeout uint32) (func(), error)

// bluezManager exposes one LEAdvertisement1 object per StartAdvertising call
type bluezManager struct {
	adapter  *adapter.Adapter1
	id       string
	delegate PeripheralManagerDelegate
	expose   exposeFunc

	mutex       sync.Mutex
	propchanged chan *bluez.PropertyChanged
	cancelWatch context.CancelFunc
	unexpose    func()
	advertising bool
	// starts counts StartAdvertising and StopAdvertising calls; an expose that finishes
	// under an older count is withdrawn
	starts uint64
}

func (m *bluezManager) watch() error {
	ch, err := m.adapter.WatchProperties()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.mutex.Lock()
	m.propchanged = ch
	m.cancelWatch = cancel
	m.mutex.Unlock()
	go func() {
		for {
			select {
			case changed := <-ch:
				if changed == nil {
					return
				}
				if changed.Name == "Powered" {
					if powered, _ := changed.Value.(bool); !powered {
						m.mutex.Lock()
						m.advertising = false
						m.mutex.Unlock()
					}
					m.delegate.PeripheralManagerDidUpdateState(m)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (m *bluezManager) State() models.ManagerState {
	powered, err := m.adapter.GetPowered()
	if err != nil {
		if models.IsKind(classifyDBusError(err), models.ErrPermissionDenied) {
			return models.ManagerStateUnauthorized
		}
		return models.ManagerStateUnknown
	}
	if powered {
		return models.ManagerStatePoweredOn
	}
	return models.ManagerStatePoweredOff
}

func (m *bluezManager) StartAdvertising(region *BeaconRegion) {
	frame, err := region.ManufacturerFrame()
	if err != nil {
		go m.delegate.DidStartAdvertising(m, err)
		return
	}
	props := &advertising.LEAdvertisement1Properties{
		Type:             advertising.AdvertisementTypeBroadcast,
		Timeout:          advertisementTimeout,
		ManufacturerData: map[uint16]interface{}{frame.CompanyID: frame.Data},
	}
	m.mutex.Lock()
	m.starts++
	start := m.starts
	m.mutex.Unlock()
	go func() {
		unexpose, err := m.expose(m.id, props, advertisementTimeout)
		if err != nil {
			err = errors.Wrap(classifyDBusError(err), "api.ExposeAdvertisement issue")
		}
		m.mutex.Lock()
		if m.starts != start {
			m.mutex.Unlock()
			if unexpose != nil {
				log.Debug("advertisement exposed after stop, withdrawing")
				unexpose()
			}
			m.delegate.DidStartAdvertising(m, err)
			return
		}
		if err == nil {
			m.unexpose = unexpose
		}
		m.advertising = err == nil
		m.mutex.Unlock()
		m.delegate.DidStartAdvertising(m, err)
	}()
}

func (m *bluezManager) StopAdvertising() {
	m.mutex.Lock()
	unexpose := m.unexpose
	m.unexpose = nil
	m.advertising = false
	m.starts++
	m.mutex.Unlock()
	if unexpose != nil {
		unexpose()
	}
}

func (m *bluezManager) IsAdvertising() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.advertising
}

func (m *bluezManager) Close() error {
	m.StopAdvertising()
	m.mutex.Lock()
	ch, cancel := m.propchanged, m.cancelWatch
	m.propchanged, m.cancelWatch = nil, nil
	m.mutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if ch != nil {
		return m.adapter.UnwatchProperties(ch)
	}
	return nil
}

// classifyDBusError maps BlueZ errors onto the beacon error kinds
func classifyDBusError(err error) error {
	name := util.DBusErrorName(err)
	switch name {
	case util.DBusAccessDenied, util.BluezNotAuthorized, util.BluezNotPermitted:
		return errors.Wrap(models.ErrPermissionDenied, err.Error())
	case util.BluezNotReady, util.DBusServiceUnknown, util.DBusUnknownObject:
		return errors.Wrap(models.ErrBluetoothUnavailable, err.Error())
	case util.BluezAlreadyExists, util.BluezNotSupported, util.BluezFailed:
		return errors.Wrap(models.ErrNativeAdvertiseFailure, err.Error())
	}
	return err
}
