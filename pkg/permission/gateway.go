// Package permission reports and requests the OS consent a beacon needs: location access and
// Bluetooth central/peripheral authorization.
package permission

import (
	"sync"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/pkg/errors"
)

var log = util.Component("permission")

// Options tunes a Gateway
type Options struct {
	// PromptDelay is how long a Bluetooth consent prompt is given before the request
	// resolves true
	PromptDelay time.Duration
}

// Gateway answers permission queries from a location source and a Bluetooth source.
// Either source may be nil.
type Gateway struct {
	location    LocationAuthorizer
	bluetooth   BluetoothAuthorizer
	promptDelay time.Duration

	mutex   sync.Mutex
	pending *request
}

type request struct {
	once   sync.Once
	result func(bool)
}

func (r *request) resolve(granted bool) {
	r.once.Do(func() {
		log.WithField("granted", granted).Debug("permission request resolved")
		r.result(granted)
	})
}

// NewGateway wires the sources and subscribes to location authorization changes
func NewGateway(location LocationAuthorizer, bluetooth BluetoothAuthorizer, opts Options) *Gateway {
	if opts.PromptDelay <= 0 {
		opts.PromptDelay = util.PermissionPromptDelay
	}
	g := &Gateway{location: location, bluetooth: bluetooth, promptDelay: opts.PromptDelay}
	if location != nil {
		location.SetChangeHandler(g.onLocationChange)
	}
	return g
}

// CheckStatus reports every permission category without blocking
func (g *Gateway) CheckStatus() models.Permissions {
	p := models.NewPermissions()
	if g.location != nil {
		p[models.Location] = locationStatus(g.location.Status())
	}
	if g.bluetooth != nil {
		state, central, peripheral := bluetoothSnapshot(g.bluetooth)
		p[models.Bluetooth] = managerStatus(state)
		p[models.BluetoothConnect] = authorizationStatus(central)
		p[models.BluetoothAdvertise] = authorizationStatus(peripheral)
	}
	return p
}

func bluetoothSnapshot(b BluetoothAuthorizer) (models.ManagerState, models.Authorization, models.Authorization) {
	if s, ok := b.(bluetoothSnapshotter); ok {
		return s.Snapshot()
	}
	return b.State(), b.CentralAuthorization(), b.PeripheralAuthorization()
}

// RequestPermissions walks the consent flow and calls result exactly once. Only one request
// waits on the OS at a time: a newer request resolves the older one false.
func (g *Gateway) RequestPermissions(result func(bool)) {
	req := &request{result: result}
	g.mutex.Lock()
	previous := g.pending
	g.pending = nil
	g.mutex.Unlock()
	if previous != nil {
		previous.resolve(false)
	}

	if g.location == nil {
		req.resolve(false)
		return
	}
	status := locationStatus(g.location.Status())
	log.WithField("location", status).Debug("requesting permissions")
	switch status {
	case models.NotDetermined, models.AuthorizedWhenInUse:
		g.mutex.Lock()
		g.pending = req
		g.mutex.Unlock()
		g.location.RequestAlways()
	case models.AuthorizedAlways:
		g.bluetoothStep(req)
	default:
		req.resolve(false)
	}
}

func (g *Gateway) onLocationChange(a models.LocationAuthorization) {
	status := locationStatus(a)
	g.mutex.Lock()
	req := g.pending
	if req == nil || status == models.NotDetermined {
		g.mutex.Unlock()
		return
	}
	g.pending = nil
	g.mutex.Unlock()

	if status.IsLocationAuthorized() {
		g.bluetoothStep(req)
		return
	}
	req.resolve(false)
}

func (g *Gateway) bluetoothStep(req *request) {
	if g.bluetooth == nil {
		req.resolve(true)
		return
	}
	switch managerStatus(g.bluetooth.State()) {
	case models.Authorized, models.PoweredOff:
		req.resolve(true)
		return
	case models.Denied, models.Restricted, models.Unsupported:
		req.resolve(false)
		return
	}
	switch {
	case g.bluetooth.CentralAuthorization() == models.AuthorizationNotDetermined:
		g.bluetooth.PromptCentral()
	case g.bluetooth.PeripheralAuthorization() == models.AuthorizationNotDetermined:
		g.bluetooth.PromptPeripheral()
	default:
		req.resolve(true)
		return
	}
	time.AfterFunc(g.promptDelay, func() { req.resolve(true) })
}

// CanAdvertise reports whether a beacon may start: location must be authorized and the
// radio powered on
func (g *Gateway) CanAdvertise() error {
	if g.location == nil || !locationStatus(g.location.Status()).IsLocationAuthorized() {
		return errors.Wrap(models.ErrPermissionDenied, "location")
	}
	if g.bluetooth == nil {
		return errors.Wrap(models.ErrBluetoothUnavailable, "no bluetooth source")
	}
	if state := g.bluetooth.State(); state != models.ManagerStatePoweredOn {
		return errors.Wrap(models.ErrBluetoothUnavailable, state.String())
	}
	return nil
}
