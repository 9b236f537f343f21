package internal

import (
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
)

// DummyLocation is a scripted location consent source
type DummyLocation struct {
	mutex    sync.Mutex
	status   models.LocationAuthorization
	handler  func(models.LocationAuthorization)
	requests int
}

func NewDummyLocation(status models.LocationAuthorization) *DummyLocation {
	return &DummyLocation{status: status}
}

func (l *DummyLocation) Status() models.LocationAuthorization {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.status
}

func (l *DummyLocation) RequestAlways() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.requests++
}

func (l *DummyLocation) SetChangeHandler(h func(models.LocationAuthorization)) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.handler = h
}

// Answer changes the status and notifies the handler, like the OS does when the user
// answers a prompt
func (l *DummyLocation) Answer(status models.LocationAuthorization) {
	l.mutex.Lock()
	l.status = status
	h := l.handler
	l.mutex.Unlock()
	if h != nil {
		h(status)
	}
}

// RequestCount returns how many times RequestAlways was called
func (l *DummyLocation) RequestCount() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.requests
}

// DummyBluetooth is a scripted Bluetooth consent source
type DummyBluetooth struct {
	mutex             sync.Mutex
	state             models.ManagerState
	central           models.Authorization
	peripheral        models.Authorization
	centralPrompts    int
	peripheralPrompts int
}

func NewDummyBluetooth(state models.ManagerState, central, peripheral models.Authorization) *DummyBluetooth {
	return &DummyBluetooth{state: state, central: central, peripheral: peripheral}
}

func (b *DummyBluetooth) State() models.ManagerState {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

func (b *DummyBluetooth) SetState(state models.ManagerState) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.state = state
}

func (b *DummyBluetooth) CentralAuthorization() models.Authorization {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.central
}

func (b *DummyBluetooth) PeripheralAuthorization() models.Authorization {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.peripheral
}

func (b *DummyBluetooth) PromptCentral() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.centralPrompts++
}

func (b *DummyBluetooth) PromptPeripheral() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.peripheralPrompts++
}

// Prompts returns how many central and peripheral prompts were shown
func (b *DummyBluetooth) Prompts() (central, peripheral int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.centralPrompts, b.peripheralPrompts
}
