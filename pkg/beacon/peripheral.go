package beacon

import (
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
)

// PeripheralManager is a native peripheral role handle. Results arrive on the delegate it
// was created with: a state update soon after creation and DidStartAdvertising after
// StartAdvertising.
type PeripheralManager interface {
	State() models.ManagerState
	StartAdvertising(region *BeaconRegion)
	StopAdvertising()
	IsAdvertising() bool
	Close() error
}

// PeripheralManagerDelegate receives the asynchronous answers of a PeripheralManager
type PeripheralManagerDelegate interface {
	PeripheralManagerDidUpdateState(PeripheralManager)
	DidStartAdvertising(PeripheralManager, error)
}

// peripheralBackend creates managers for the current platform
type peripheralBackend interface {
	NewManager(PeripheralManagerDelegate) (PeripheralManager, error)
	Supported() models.SupportCode
}

// Peripheral advertises a proximity beacon region through a peripheral manager. Advertising
// is requested once the manager reports the radio powered on.
type Peripheral struct {
	machine
	backend peripheralBackend

	handleMutex          sync.Mutex
	manager              PeripheralManager
	region               *BeaconRegion
	managerGen           uint64
	shouldStartAdvertise bool
}

func newPeripheral(backend peripheralBackend) *Peripheral {
	return &Peripheral{backend: backend}
}

// Start implements Controller
func (p *Peripheral) Start(data models.BeaconData) error {
	region, err := NewBeaconRegion(data)
	if err != nil {
		return err
	}
	if data.LayoutExpr() != "" {
		log.WithField("layout", data.LayoutExpr()).Debug("peripheral beacons ignore the layout")
	}
	gen, err := p.begin()
	if err != nil {
		return err
	}

	p.handleMutex.Lock()
	previous := p.manager
	p.manager = nil
	p.shouldStartAdvertise = false
	p.handleMutex.Unlock()
	if previous != nil {
		previous.StopAdvertising()
		if err := previous.Close(); err != nil {
			log.WithError(err).Debug("could not close previous peripheral manager")
		}
	}

	delegate := &peripheralDelegate{p, gen}
	manager, err := p.backend.NewManager(delegate)
	if err != nil {
		log.WithError(err).Warn("could not create peripheral manager")
		go p.machine.settle(gen, false)
		return nil
	}
	p.handleMutex.Lock()
	p.manager = manager
	p.region = region
	p.managerGen = gen
	p.shouldStartAdvertise = true
	p.handleMutex.Unlock()

	if manager.State() == models.ManagerStatePoweredOn {
		delegate.PeripheralManagerDidUpdateState(manager)
	}
	return nil
}

// Stop implements Controller
func (p *Peripheral) Stop() {
	p.handleMutex.Lock()
	manager := p.manager
	p.shouldStartAdvertise = false
	p.handleMutex.Unlock()
	if manager != nil {
		manager.StopAdvertising()
	}
	p.reset()
}

// IsAdvertising implements Controller
func (p *Peripheral) IsAdvertising() bool {
	p.handleMutex.Lock()
	manager := p.manager
	p.handleMutex.Unlock()
	if manager == nil {
		return false
	}
	return manager.IsAdvertising()
}

// IsSupported implements Controller
func (p *Peripheral) IsSupported() models.SupportCode {
	return p.backend.Supported()
}

// peripheralDelegate ties manager callbacks to the start call that created the manager
type peripheralDelegate struct {
	p   *Peripheral
	gen uint64
}

func (d *peripheralDelegate) PeripheralManagerDidUpdateState(manager PeripheralManager) {
	state := manager.State()
	log.WithField("state", state).Debug("peripheral manager state")
	if state != models.ManagerStatePoweredOn {
		return
	}
	p := d.p
	p.handleMutex.Lock()
	if p.manager != manager || p.managerGen != d.gen || !p.shouldStartAdvertise {
		p.handleMutex.Unlock()
		return
	}
	p.shouldStartAdvertise = false
	region := p.region
	p.handleMutex.Unlock()
	manager.StartAdvertising(region)
}

func (d *peripheralDelegate) DidStartAdvertising(manager PeripheralManager, err error) {
	if err != nil {
		log.WithError(err).Warn("peripheral manager failed to advertise")
	}
	d.p.machine.settle(d.gen, manager.IsAdvertising())
}
