package channel

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Krajiyah/beacon-sdk/internal"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"golang.org/x/net/websocket"
	"gotest.tools/assert"
)

func dialHost(t *testing.T, h *Host) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(h.Handler())
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, err := websocket.Dial(url, "", server.URL)
	assert.NilError(t, err)
	return ws, func() {
		ws.Close()
		server.Close()
	}
}

func receive(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	assert.NilError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	var e Envelope
	assert.NilError(t, websocket.JSON.Receive(ws, &e))
	return e
}

func TestHostMethodCall(t *testing.T) {
	c := &fakeController{}
	ws, done := dialHost(t, NewHost(NewPlugin(c, nil)))
	defer done()

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 1, Channel: util.MethodChannelName, Method: MethodIsTransmissionSupported}))
	e := receive(t, ws)
	assert.Equal(t, e.ID, int64(1))
	assert.Equal(t, e.Channel, util.MethodChannelName)
	assert.Equal(t, string(e.Result), "0")

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 2, Channel: util.MethodChannelName, Method: "frobnicate"}))
	e = receive(t, ws)
	assert.Equal(t, e.ID, int64(2))
	assert.Assert(t, e.NotImplemented)

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 3, Channel: "elsewhere", Method: MethodStop}))
	e = receive(t, ws)
	assert.Equal(t, e.Error.Code, ErrCodeBadRequest)
	assert.Equal(t, c.stops, 0)
}

func TestHostStartAndEvents(t *testing.T) {
	c := &fakeController{}
	ws, done := dialHost(t, NewHost(NewPlugin(c, nil)))
	defer done()

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 1, Channel: util.EventChannelName, Method: MethodListen}))
	assert.Equal(t, receive(t, ws).ID, int64(1))

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 2, Channel: util.MethodChannelName, Method: MethodStart, Arguments: internal.StartArguments()}))
	var sawResult, sawEvent bool
	for i := 0; i < 2; i++ {
		e := receive(t, ws)
		if e.IsEvent() {
			assert.Equal(t, *e.Event, true)
			assert.Equal(t, e.Channel, util.EventChannelName)
			sawEvent = true
			continue
		}
		assert.Equal(t, e.ID, int64(2))
		assert.Equal(t, string(e.Result), "null")
		sawResult = true
	}
	assert.Assert(t, sawResult && sawEvent)
	assert.Equal(t, c.started[0].Mode().String(), "LowLatency")

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 3, Channel: util.EventChannelName, Method: MethodCancel}))
	assert.Equal(t, receive(t, ws).ID, int64(3))
	c.Stop()
	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 4, Channel: util.MethodChannelName, Method: MethodIsAdvertising}))
	e := receive(t, ws)
	assert.Equal(t, e.ID, int64(4))
	assert.Equal(t, string(e.Result), "false")
}

func TestHostBadJSON(t *testing.T) {
	ws, done := dialHost(t, NewHost(NewPlugin(&fakeController{}, nil)))
	defer done()
	assert.NilError(t, websocket.Message.Send(ws, "{not json"))
	e := receive(t, ws)
	assert.Equal(t, e.Error.Code, ErrCodeBadRequest)

	assert.NilError(t, websocket.JSON.Send(ws, Request{ID: 5, Channel: util.MethodChannelName, Method: MethodCheckPermissionStatus}))
	e = receive(t, ws)
	var status map[string]string
	assert.NilError(t, json.Unmarshal(e.Result, &status))
	assert.Equal(t, len(status), 4)
}
