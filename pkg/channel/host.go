package channel

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/Krajiyah/beacon-sdk/pkg/util"
	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"
)

// Host serves a Plugin over websocket connections carrying JSON envelopes
type Host struct {
	plugin *Plugin

	mutex     sync.Mutex
	listeners mapset.Set
}

// NewHost returns a Host for p
func NewHost(p *Plugin) *Host {
	return &Host{plugin: p, listeners: mapset.NewSet()}
}

// Handler is the websocket endpoint
func (h *Host) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

type conn struct {
	ws    *websocket.Conn
	mutex sync.Mutex
}

func (c *conn) send(e Envelope) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := websocket.JSON.Send(c.ws, e); err != nil {
		log.WithError(err).Debug("could not write to connection")
	}
}

func (h *Host) serve(ws *websocket.Conn) {
	c := &conn{ws: ws}
	entry := log.WithField("remote", ws.Request().RemoteAddr)
	entry.Debug("connection opened")
	defer func() {
		h.cancel(c)
		ws.Close()
		entry.Debug("connection closed")
	}()
	for {
		var req Request
		err := websocket.JSON.Receive(ws, &req)
		if err == io.EOF {
			return
		}
		if err != nil {
			if isDecodeError(err) {
				c.send(Envelope{Error: &WireError{Code: ErrCodeBadRequest, Message: err.Error()}})
				continue
			}
			entry.WithError(err).Debug("could not read from connection")
			return
		}
		h.dispatch(c, req)
	}
}

func isDecodeError(err error) bool {
	switch err.(type) {
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return true
	}
	return false
}

func (h *Host) dispatch(c *conn, req Request) {
	r := &wireResult{conn: c, id: req.ID, channel: req.Channel}
	switch req.Channel {
	case util.MethodChannelName:
		err := util.CatchErrs(func() error {
			h.plugin.Handle(MethodCall{Method: req.Method, Arguments: req.Arguments}, r)
			return nil
		})
		if err != nil {
			log.WithError(err).WithField("method", req.Method).Warn("method call panicked")
			r.Error(ErrCodeInternal, err.Error(), nil)
		}
	case util.EventChannelName:
		switch req.Method {
		case MethodListen:
			h.listen(c)
			r.Success(nil)
		case MethodCancel:
			h.cancel(c)
			r.Success(nil)
		default:
			r.NotImplemented()
		}
	default:
		r.Error(ErrCodeBadRequest, errors.Errorf("unknown channel %q", req.Channel).Error(), nil)
	}
}

func (h *Host) listen(c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.listeners.Add(c)
	if h.listeners.Cardinality() == 1 {
		h.plugin.OnListen(h.broadcast)
	}
}

func (h *Host) cancel(c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.listeners.Contains(c) {
		return
	}
	h.listeners.Remove(c)
	if h.listeners.Cardinality() == 0 {
		h.plugin.OnCancel()
	}
}

func (h *Host) broadcast(advertising bool) {
	event := Envelope{Channel: util.EventChannelName, Event: &advertising}
	for _, l := range h.listeners.ToSlice() {
		l.(*conn).send(event)
	}
}

// wireResult answers one request; only the first answer is sent
type wireResult struct {
	conn    *conn
	id      int64
	channel string
	once    sync.Once
}

func (r *wireResult) reply(e Envelope) {
	r.once.Do(func() {
		e.ID = r.id
		e.Channel = r.channel
		r.conn.send(e)
	})
}

func (r *wireResult) Success(value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.Error(ErrCodeInternal, err.Error(), nil)
		return
	}
	r.reply(Envelope{Result: raw})
}

func (r *wireResult) Error(code, message string, details interface{}) {
	r.reply(Envelope{Error: &WireError{Code: code, Message: message, Details: details}})
}

func (r *wireResult) NotImplemented() {
	r.reply(Envelope{NotImplemented: true})
}
