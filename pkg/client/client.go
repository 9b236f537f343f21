package client

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/Krajiyah/beacon-sdk/pkg/channel"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"
)

const eventBuffer = 16

var (
	// ErrNotImplemented is returned when the host does not know a command
	ErrNotImplemented = errors.New("not implemented")
	// ErrRejected is returned when the host answers a command with false
	ErrRejected = errors.New("command rejected")
	// ErrClosed is returned for calls on, or pending on, a closed client
	ErrClosed = errors.New("client closed")

	log = util.Component("client")
)

// Client is the application side of a beacon host
type Client interface {
	Start(context.Context, models.BeaconData) error
	Stop(context.Context) error
	IsAdvertising(context.Context) (bool, error)
	IsTransmissionSupported(context.Context) (models.SupportCode, error)
	CheckPermissionStatus(context.Context) (models.Permissions, error)
	RequestPermissions(context.Context) (bool, error)
	Listen(context.Context) error
	Cancel(context.Context) error
	Events() <-chan bool
	Status() Status
	Close() error
}

// RemoteError is an error answer from the host
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string { return e.Code + ": " + e.Message }

// BeaconClient talks to a channel.Host over one websocket
type BeaconClient struct {
	ws     *websocket.Conn
	nextID int64
	events chan bool

	writeMutex sync.Mutex
	mutex      sync.Mutex
	pending    map[int64]chan channel.Envelope
	status     Status
	closeOnce  sync.Once
}

// Dial connects to the host at url ("ws://host:port/path")
func Dial(url, origin string) (*BeaconClient, error) {
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, errors.Wrap(err, "websocket.Dial issue")
	}
	return newBeaconClient(ws), nil
}

func newBeaconClient(ws *websocket.Conn) *BeaconClient {
	c := &BeaconClient{
		ws:      ws,
		events:  make(chan bool, eventBuffer),
		pending: map[int64]chan channel.Envelope{},
		status:  Connected,
	}
	go c.readLoop()
	return c
}

func (c *BeaconClient) readLoop() {
	defer c.shutdown()
	for {
		var e channel.Envelope
		if err := websocket.JSON.Receive(c.ws, &e); err != nil {
			c.mutex.Lock()
			connected := c.status == Connected
			c.mutex.Unlock()
			if connected {
				log.WithError(err).Debug("connection lost")
			}
			return
		}
		if e.IsEvent() {
			select {
			case c.events <- *e.Event:
			default:
				log.WithField("advertising", *e.Event).Warn("event buffer full, dropping event")
			}
			continue
		}
		c.mutex.Lock()
		ch, ok := c.pending[e.ID]
		delete(c.pending, e.ID)
		c.mutex.Unlock()
		if !ok {
			log.WithField("id", e.ID).Debug("answer for unknown request")
			continue
		}
		ch <- e
	}
}

func (c *BeaconClient) shutdown() {
	c.closeOnce.Do(func() {
		c.mutex.Lock()
		c.status = Disconnected
		pending := c.pending
		c.pending = map[int64]chan channel.Envelope{}
		c.mutex.Unlock()
		for _, ch := range pending {
			close(ch)
		}
		close(c.events)
	})
}

func (c *BeaconClient) call(ctx context.Context, channelName, method string, args map[string]interface{}) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	ch := make(chan channel.Envelope, 1)
	c.mutex.Lock()
	if c.status != Connected {
		c.mutex.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mutex.Unlock()

	c.writeMutex.Lock()
	err := websocket.JSON.Send(c.ws, channel.Request{ID: id, Channel: channelName, Method: method, Arguments: args})
	c.writeMutex.Unlock()
	if err != nil {
		c.forget(id)
		return nil, errors.Wrap(err, "could not send "+method)
	}

	select {
	case e, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if e.NotImplemented {
			return nil, errors.Wrap(ErrNotImplemented, method)
		}
		if e.Error != nil {
			return nil, &RemoteError{Code: e.Error.Code, Message: e.Error.Message}
		}
		return e.Result, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *BeaconClient) forget(id int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.pending, id)
}

func (c *BeaconClient) method(ctx context.Context, method string, args map[string]interface{}, out interface{}) error {
	raw, err := c.call(ctx, util.MethodChannelName, method, args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), method)
}

// Start asks the host to advertise data. A nil error means the request was accepted; the
// outcome arrives on Events.
func (c *BeaconClient) Start(ctx context.Context, data models.BeaconData) error {
	var accepted *bool
	if err := c.method(ctx, channel.MethodStart, channel.Arguments(data), &accepted); err != nil {
		return err
	}
	if accepted != nil && !*accepted {
		return ErrRejected
	}
	return nil
}

// Stop asks the host to stop advertising
func (c *BeaconClient) Stop(ctx context.Context) error {
	return c.method(ctx, channel.MethodStop, nil, nil)
}

func (c *BeaconClient) IsAdvertising(ctx context.Context) (bool, error) {
	var advertising bool
	err := c.method(ctx, channel.MethodIsAdvertising, nil, &advertising)
	return advertising, err
}

func (c *BeaconClient) IsTransmissionSupported(ctx context.Context) (models.SupportCode, error) {
	var code int
	err := c.method(ctx, channel.MethodIsTransmissionSupported, nil, &code)
	return models.SupportCode(code), err
}

func (c *BeaconClient) CheckPermissionStatus(ctx context.Context) (models.Permissions, error) {
	var raw map[string]string
	if err := c.method(ctx, channel.MethodCheckPermissionStatus, nil, &raw); err != nil {
		return nil, err
	}
	status := models.Permissions{}
	for category, name := range raw {
		status[models.PermissionCategory(category)] = models.ParsePermissionStatus(name)
	}
	return status, nil
}

// RequestPermissions blocks until the host resolves the permission flow or ctx ends
func (c *BeaconClient) RequestPermissions(ctx context.Context) (bool, error) {
	var granted bool
	err := c.method(ctx, channel.MethodRequestPermissions, nil, &granted)
	return granted, err
}

// Listen subscribes this connection to advertising state events
func (c *BeaconClient) Listen(ctx context.Context) error {
	_, err := c.call(ctx, util.EventChannelName, channel.MethodListen, nil)
	return err
}

// Cancel unsubscribes this connection from advertising state events
func (c *BeaconClient) Cancel(ctx context.Context) error {
	_, err := c.call(ctx, util.EventChannelName, channel.MethodCancel, nil)
	return err
}

// Events delivers advertising state changes after Listen. It is closed with the client.
func (c *BeaconClient) Events() <-chan bool { return c.events }

func (c *BeaconClient) Status() Status {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.status
}

// Close ends the connection; pending calls fail with ErrClosed
func (c *BeaconClient) Close() error {
	c.mutex.Lock()
	c.status = Disconnected
	c.mutex.Unlock()
	return c.ws.Close()
}
