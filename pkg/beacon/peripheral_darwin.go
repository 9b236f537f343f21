//go:build darwin
// +build darwin

package beacon

import (
	"github.com/JuulLabs-OSS/cbgo"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
)

// NewPeripheral returns a Peripheral backed by a CoreBluetooth peripheral manager
func NewPeripheral() *Peripheral {
	return newPeripheral(cbBackend{})
}

type cbBackend struct{}

func (cbBackend) NewManager(delegate PeripheralManagerDelegate) (PeripheralManager, error) {
	m := &cbManager{delegate: delegate}
	m.pm = cbgo.NewPeripheralManager(nil)
	m.pm.SetDelegate(&cbDelegate{m: m})
	return m, nil
}

func (cbBackend) Supported() models.SupportCode {
	return models.Supported
}

type cbManager struct {
	pm       cbgo.PeripheralManager
	delegate PeripheralManagerDelegate
}

func (m *cbManager) State() models.ManagerState {
	return managerState(m.pm.State())
}

func (m *cbManager) StartAdvertising(region *BeaconRegion) {
	m.pm.StartAdvertising(cbgo.AdvData{IBeaconData: region.PeripheralData()})
}

func (m *cbManager) StopAdvertising()    { m.pm.StopAdvertising() }
func (m *cbManager) IsAdvertising() bool { return m.pm.IsAdvertising() }

func (m *cbManager) Close() error {
	m.pm.StopAdvertising()
	return nil
}

// cbDelegate forwards CoreBluetooth callbacks to the controller delegate
type cbDelegate struct {
	m *cbManager
}

func (d *cbDelegate) PeripheralManagerDidUpdateState(cbgo.PeripheralManager) {
	d.m.delegate.PeripheralManagerDidUpdateState(d.m)
}

func (d *cbDelegate) DidStartAdvertising(_ cbgo.PeripheralManager, err error) {
	d.m.delegate.DidStartAdvertising(d.m, err)
}

func (d *cbDelegate) DidAddService(cbgo.PeripheralManager, cbgo.Service, error)      {}
func (d *cbDelegate) DidReceiveReadRequest(cbgo.PeripheralManager, cbgo.ATTRequest)     {}
func (d *cbDelegate) DidReceiveWriteRequests(cbgo.PeripheralManager, []cbgo.ATTRequest) {}
func (d *cbDelegate) CentralDidSubscribe(cbgo.PeripheralManager, cbgo.Central, cbgo.Characteristic) {
}
func (d *cbDelegate) CentralDidUnsubscribe(cbgo.PeripheralManager, cbgo.Central, cbgo.Characteristic) {
}

func managerState(s cbgo.ManagerState) models.ManagerState {
	switch s {
	case cbgo.ManagerStateResetting:
		return models.ManagerStateResetting
	case cbgo.ManagerStateUnsupported:
		return models.ManagerStateUnsupported
	case cbgo.ManagerStateUnauthorized:
		return models.ManagerStateUnauthorized
	case cbgo.ManagerStatePoweredOff:
		return models.ManagerStatePoweredOff
	case cbgo.ManagerStatePoweredOn:
		return models.ManagerStatePoweredOn
	}
	return models.ManagerStateUnknown
}
