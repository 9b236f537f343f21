// Package channel exposes a beacon controller and a permission gateway as named commands,
// plus an event stream of advertising state changes.
package channel

import (
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/beacon"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	mapset "github.com/deckarep/golang-set"
)

// Command names accepted on the method channel
const (
	MethodStart                   = "start"
	MethodStop                    = "stop"
	MethodIsAdvertising           = "isAdvertising"
	MethodIsTransmissionSupported = "isTransmissionSupported"
	MethodCheckPermissionStatus   = "checkPermissionStatus"
	MethodRequestPermissions      = "requestPermissions"
)

var (
	log     = util.Component("channel")
	methods = mapset.NewSet(
		MethodStart, MethodStop, MethodIsAdvertising,
		MethodIsTransmissionSupported, MethodCheckPermissionStatus, MethodRequestPermissions,
	)
)

// MethodCall is one named command with its arguments
type MethodCall struct {
	Method    string
	Arguments map[string]interface{}
}

// Result answers a MethodCall exactly once
type Result interface {
	Success(value interface{})
	Error(code, message string, details interface{})
	NotImplemented()
}

// EventSink receives advertising state changes
type EventSink func(advertising bool)

// PermissionGateway is what the plugin needs from the permission package
type PermissionGateway interface {
	CheckStatus() models.Permissions
	RequestPermissions(result func(bool))
	CanAdvertise() error
}

// Plugin routes method calls to a controller and streams its events to one sink
type Plugin struct {
	controller beacon.Controller
	gateway    PermissionGateway

	mutex sync.Mutex
	sink  EventSink
}

// NewPlugin wires controller and, when not nil, gateway. Start commands are refused unless
// gateway.CanAdvertise passes.
func NewPlugin(controller beacon.Controller, gateway PermissionGateway) *Plugin {
	p := &Plugin{controller: controller, gateway: gateway}
	controller.Subscribe(models.AdvertisingListenerFunc(p.forward))
	return p
}

// Handle routes call and answers through result
func (p *Plugin) Handle(call MethodCall, result Result) {
	entry := log.WithField("method", call.Method)
	if !methods.Contains(call.Method) {
		entry.Debug("method not implemented")
		result.NotImplemented()
		return
	}
	entry.Debug("handling method call")
	switch call.Method {
	case MethodStart:
		p.start(call, result)
	case MethodStop:
		p.controller.Stop()
		result.Success(nil)
	case MethodIsAdvertising:
		result.Success(p.controller.IsAdvertising())
	case MethodIsTransmissionSupported:
		result.Success(int(p.controller.IsSupported()))
	case MethodCheckPermissionStatus:
		result.Success(p.permissionStatus().ToMap())
	case MethodRequestPermissions:
		if p.gateway == nil {
			result.Success(true)
			return
		}
		p.gateway.RequestPermissions(func(granted bool) { result.Success(granted) })
	}
}

func (p *Plugin) start(call MethodCall, result Result) {
	entry := log.WithField("method", call.Method)
	data, err := BeaconDataFromArguments(call.Arguments)
	if err != nil {
		entry.WithError(err).Warn("rejected start arguments")
		result.Success(false)
		return
	}
	if p.gateway != nil {
		if err := p.gateway.CanAdvertise(); err != nil {
			entry.WithError(err).Warn("not allowed to advertise")
			result.Success(false)
			return
		}
	}
	if err := p.controller.Start(data); err != nil {
		entry.WithError(err).Warn("could not start beacon")
		result.Success(false)
		return
	}
	result.Success(nil)
}

func (p *Plugin) permissionStatus() models.Permissions {
	if p.gateway != nil {
		return p.gateway.CheckStatus()
	}
	status := models.NewPermissions()
	status[models.Location] = models.AuthorizedAlways
	if p.controller.IsSupported() == models.Supported {
		status[models.Bluetooth] = models.Authorized
		status[models.BluetoothConnect] = models.Authorized
		status[models.BluetoothAdvertise] = models.Authorized
	} else {
		status[models.Bluetooth] = models.Unsupported
	}
	return status
}

// OnListen makes sink the receiver of advertising state changes, replacing any previous one
func (p *Plugin) OnListen(sink EventSink) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sink = sink
}

// OnCancel drops the current sink; events emitted without a sink are lost
func (p *Plugin) OnCancel() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sink = nil
}

func (p *Plugin) forward(advertising bool) {
	p.mutex.Lock()
	sink := p.sink
	p.mutex.Unlock()
	if sink == nil {
		log.WithField("advertising", advertising).Debug("no listener for advertising event")
		return
	}
	sink(advertising)
}
