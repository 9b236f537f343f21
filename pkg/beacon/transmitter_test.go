package beacon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/layout"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/pkg/errors"
	"gotest.tools/assert"
)

type coreCalls struct {
	interval    time.Duration
	opens       int
	closes      int
	lastKind    layout.FrameKind
	lastID      uint16
	lastPayload []byte
}

type testCoreMethods struct {
	mutex     sync.Mutex
	support   models.SupportCode
	openErr   error
	openPanic bool
	advertErr error
	failLater chan error
	calls     coreCalls
}

func newTestCoreMethods() *testCoreMethods {
	return &testCoreMethods{failLater: make(chan error, 1)}
}

func (m *testCoreMethods) Open(interval time.Duration) error {
	if m.openPanic {
		panic("hci socket vanished")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls.opens++
	m.calls.interval = interval
	return m.openErr
}

func (m *testCoreMethods) advertise(ctx context.Context, kind layout.FrameKind, id uint16, b []byte) error {
	m.mutex.Lock()
	m.calls.lastKind, m.calls.lastID, m.calls.lastPayload = kind, id, b
	err := m.advertErr
	m.mutex.Unlock()
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-m.failLater:
		return err
	}
}

func (m *testCoreMethods) AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error {
	return m.advertise(ctx, layout.ManufacturerData, id, b)
}

func (m *testCoreMethods) AdvertiseServiceData16(ctx context.Context, id uint16, b []byte) error {
	return m.advertise(ctx, layout.ServiceData, id, b)
}

func (m *testCoreMethods) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls.closes++
	return nil
}

func (m *testCoreMethods) Probe() models.SupportCode { return m.support }

func (m *testCoreMethods) snapshot() coreCalls {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}

func newTestTransmitter() (*Transmitter, *testCoreMethods, *recorder) {
	methods := newTestCoreMethods()
	tx := newTransmitter(methods, TransmitterOptions{Settle: testSettleTime})
	return tx, methods, record(tx)
}

func TestTransmitterStartSuccess(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), true)
	assert.Equal(t, tx.State(), Advertising)
	assert.Assert(t, tx.IsAdvertising())

	got := methods.snapshot()
	assert.Equal(t, got.opens, 1)
	assert.Equal(t, got.interval, time.Millisecond*250)
	assert.Equal(t, got.lastKind, layout.ManufacturerData)
	assert.Equal(t, got.lastID, uint16(0x0118))
	assert.DeepEqual(t, got.lastPayload[:2], []byte{0xbe, 0xac})
}

func TestTransmitterAdvertiseMode(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	data := testData()
	data.AdvertiseMode = models.Mode(models.LowLatency)
	assert.NilError(t, tx.Start(data))
	assert.Equal(t, events.next(t), true)
	assert.Equal(t, methods.snapshot().interval, time.Millisecond*100)
}

func TestTransmitterEddystoneServiceData(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	data := testData()
	data.Layout = models.String("eddystone_uid")
	data.Identifier = "0x0102030405FF"
	assert.NilError(t, tx.Start(data))
	assert.Equal(t, events.next(t), true)
	got := methods.snapshot()
	assert.Equal(t, got.lastKind, layout.ServiceData)
	assert.Equal(t, got.lastID, uint16(0xFEAA))
}

func TestTransmitterStartFailure(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	methods.advertErr = errors.New("advertising set busy")
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, tx.State(), StoppedOnError)
	assert.Assert(t, !tx.IsAdvertising())

	methods.mutex.Lock()
	methods.advertErr = nil
	methods.mutex.Unlock()
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), true)
}

func TestTransmitterOpenFailure(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	methods.openErr = errors.New("no hci device")
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, tx.State(), StoppedOnError)
}

func TestTransmitterOpenPanic(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	methods.openPanic = true
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), false)
}

func TestTransmitterUnsupported(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	methods.support = models.NotSupportedBLE
	assert.Equal(t, tx.IsSupported(), models.NotSupportedBLE)
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, methods.snapshot().opens, 0)
}

func TestTransmitterInvalidData(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	data := testData()
	data.UUID = "not-a-uuid"
	err := tx.Start(data)
	assert.Assert(t, models.IsKind(err, models.ErrInvalidUUID))
	assert.Equal(t, tx.State(), Idle)
	assert.Equal(t, methods.snapshot().opens, 0)
	events.quiet(t)
}

func TestTransmitterAlreadyStarted(t *testing.T) {
	tx, _, events := newTestTransmitter()
	assert.NilError(t, tx.Start(testData()))
	err := tx.Start(testData())
	assert.Equal(t, errors.Cause(err), ErrAlreadyStarted)
	assert.Equal(t, events.next(t), true)
	err = tx.Start(testData())
	assert.Equal(t, errors.Cause(err), ErrAlreadyStarted)
}

func TestTransmitterStopEmitsFalse(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	tx.Stop()
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, tx.State(), Idle)
	assert.Equal(t, methods.snapshot().closes, 0)

	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), true)
	tx.Stop()
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, methods.snapshot().closes, 1)
	assert.Assert(t, !tx.IsAdvertising())
	events.quiet(t)
}

func TestTransmitterStopDropsLateSuccess(t *testing.T) {
	methods := newTestCoreMethods()
	tx := newTransmitter(methods, TransmitterOptions{Settle: time.Millisecond * 50})
	events := record(tx)
	assert.NilError(t, tx.Start(testData()))
	tx.Stop()
	assert.Equal(t, events.next(t), false)
	events.quiet(t)
	assert.Equal(t, tx.State(), Idle)
}

func TestTransmitterUnexpectedStop(t *testing.T) {
	tx, methods, events := newTestTransmitter()
	assert.NilError(t, tx.Start(testData()))
	assert.Equal(t, events.next(t), true)
	methods.failLater <- errors.New("controller reset")
	assert.Equal(t, events.next(t), false)
	assert.Equal(t, tx.State(), StoppedOnError)
}

func TestTransmitterUnsubscribe(t *testing.T) {
	tx, _, events := newTestTransmitter()
	events.unsubscribe()
	tx.Stop()
	events.quiet(t)
}
