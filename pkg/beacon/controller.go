package beacon

import (
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/pkg/errors"
)

// ErrAlreadyStarted is returned by Start while a session is starting or advertising
var ErrAlreadyStarted = errors.New("beacon is already started")

var log = util.Component("beacon")

// Controller owns a single native advertising handle
type Controller interface {
	// Start validates data, hands the beacon to the native advertiser and returns. The
	// outcome arrives later as an advertising state event.
	Start(models.BeaconData) error
	// Stop ceases advertising and always emits false
	Stop()
	IsAdvertising() bool
	IsSupported() models.SupportCode
	State() State
	// Subscribe registers l for advertising state events until unsubscribe is called
	Subscribe(l models.AdvertisingListener) (unsubscribe func())
}

// State is the lifecycle of one controller
type State int

const (
	// Idle means no session is running
	Idle State = iota
	// Starting means the native layer was asked to advertise and has not answered yet
	Starting
	// Advertising means the native layer confirmed advertising
	Advertising
	// StoppedOnError means the native layer refused or lost the session
	StoppedOnError
)

func (s State) String() string {
	return []string{"Idle", "Starting", "Advertising", "StoppedOnError"}[s]
}

type subscription struct {
	id       int
	listener models.AdvertisingListener
}

type listeners struct {
	mutex sync.Mutex
	next  int
	subs  []subscription
}

func (l *listeners) subscribe(listener models.AdvertisingListener) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.next++
	id := l.next
	l.subs = append(l.subs, subscription{id, listener})
	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) emit(advertising bool) {
	l.mutex.Lock()
	subs := make([]subscription, len(l.subs))
	copy(subs, l.subs)
	l.mutex.Unlock()
	for _, s := range subs {
		s.listener.OnAdvertisingStateChanged(advertising)
	}
}

// machine is the state shared by every controller variant. A generation number ties
// native callbacks to the start call that caused them so late answers after a stop
// are dropped.
type machine struct {
	mutex      sync.Mutex
	state      State
	generation uint64
	listeners  listeners
}

func (m *machine) State() State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state
}

func (m *machine) Subscribe(l models.AdvertisingListener) func() {
	return m.listeners.subscribe(l)
}

func (m *machine) begin() (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.state == Starting || m.state == Advertising {
		return 0, errors.Wrap(ErrAlreadyStarted, m.state.String())
	}
	m.generation++
	m.state = Starting
	return m.generation, nil
}

// settle records the native answer for generation gen and emits it
func (m *machine) settle(gen uint64, advertising bool) bool {
	m.mutex.Lock()
	if gen != m.generation || (m.state != Starting && m.state != Advertising) {
		m.mutex.Unlock()
		return false
	}
	if advertising {
		m.state = Advertising
	} else {
		m.state = StoppedOnError
	}
	m.mutex.Unlock()
	log.WithField("advertising", advertising).Debug("native advertising state")
	m.listeners.emit(advertising)
	return true
}

// reset returns to Idle, invalidates pending callbacks and emits false
func (m *machine) reset() {
	m.mutex.Lock()
	m.generation++
	m.state = Idle
	m.mutex.Unlock()
	m.listeners.emit(false)
}

func (m *machine) current(gen uint64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return gen == m.generation
}

// Variant names a controller implementation
type Variant string

const (
	// VariantTransmitter advertises layout frames through a raw advertiser
	VariantTransmitter Variant = "transmitter"
	// VariantPeripheral advertises a proximity region through a peripheral manager
	VariantPeripheral Variant = "peripheral"
)

// New returns the controller implementation named by v
func New(v Variant, opts TransmitterOptions) (Controller, error) {
	switch v {
	case VariantTransmitter:
		return NewTransmitter(opts), nil
	case VariantPeripheral:
		return NewPeripheral(), nil
	}
	return nil, errors.Wrapf(models.ErrInvalidArgument, "unknown controller variant %q", v)
}
