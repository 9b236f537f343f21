package beacon

import (
	"context"
	"sync"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/layout"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/pkg/errors"
)

const (
	// DefaultSettle is how long an advertise call must run without error to count as started
	DefaultSettle = time.Millisecond * 200
	// DefaultOpenTimeout bounds how long Start waits for the native advertiser to open
	DefaultOpenTimeout = time.Second * 5
)

// coreMethods is the native advertiser a Transmitter drives. Advertise calls block until
// ctx is done and return early only on failure.
type coreMethods interface {
	Open(interval time.Duration) error
	AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error
	AdvertiseServiceData16(ctx context.Context, id uint16, b []byte) error
	Close() error
	Probe() models.SupportCode
}

// TransmitterOptions tunes a Transmitter
type TransmitterOptions struct {
	Settle      time.Duration
	OpenTimeout time.Duration
}

// Transmitter advertises layout encoded frames through a raw advertiser
type Transmitter struct {
	machine
	methods     coreMethods
	settleAfter time.Duration
	openTimeout time.Duration

	handleMutex sync.Mutex
	cancel      context.CancelFunc
	opened      bool
}

func newTransmitter(methods coreMethods, opts TransmitterOptions) *Transmitter {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	return &Transmitter{methods: methods, settleAfter: opts.Settle, openTimeout: opts.OpenTimeout}
}

// Start implements Controller
func (t *Transmitter) Start(data models.BeaconData) error {
	d, err := NewDescriptor(data)
	if err != nil {
		return err
	}
	gen, err := t.begin()
	if err != nil {
		return err
	}
	entry := log.WithField("layout", d.Layout.Expr).WithField("mode", d.Mode)

	if code := t.methods.Probe(); code != models.Supported {
		entry.WithField("support", code).Warn("transmission not supported")
		t.settleAsync(gen, false)
		return nil
	}
	t.handleMutex.Lock()
	if t.opened {
		t.methods.Close()
		t.opened = false
	}
	err = util.Timeout(func() error {
		return util.CatchErrs(func() error { return t.methods.Open(d.Mode.Interval()) })
	}, t.openTimeout)
	if err == util.ErrTimeout {
		// a late Open must not leave a device behind
		if cerr := util.CatchErrs(t.methods.Close); cerr != nil {
			entry.WithError(cerr).Debug("could not abandon advertiser")
		}
	}
	if err != nil {
		t.handleMutex.Unlock()
		entry.WithError(err).Warn("could not open advertiser")
		t.settleAsync(gen, false)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.opened = true
	t.handleMutex.Unlock()

	go t.run(ctx, gen, d.Frame)
	return nil
}

// settleAsync delivers a failure the way a native callback would: after Start returned
func (t *Transmitter) settleAsync(gen uint64, advertising bool) {
	go t.machine.settle(gen, advertising)
}

func (t *Transmitter) advertise(ctx context.Context, frame layout.Frame) error {
	return util.CatchErrs(func() error {
		if frame.Kind == layout.ServiceData {
			return t.methods.AdvertiseServiceData16(ctx, frame.ServiceUUID, frame.Data)
		}
		return t.methods.AdvertiseMfgData(ctx, frame.CompanyID, frame.Data)
	})
}

func (t *Transmitter) run(ctx context.Context, gen uint64, frame layout.Frame) {
	errc := make(chan error, 1)
	go func() { errc <- t.advertise(ctx, frame) }()

	timer := time.NewTimer(t.settleAfter)
	defer timer.Stop()
	select {
	case err := <-errc:
		if ctx.Err() == nil {
			log.WithError(errors.Wrap(models.ErrNativeAdvertiseFailure, errString(err))).Warn("advertising failed to start")
			t.machine.settle(gen, false)
		}
		return
	case <-timer.C:
		t.machine.settle(gen, true)
	}

	err := <-errc
	if ctx.Err() == nil && t.current(gen) {
		log.WithError(errors.Wrap(models.ErrNativeAdvertiseFailure, errString(err))).Warn("advertising stopped unexpectedly")
		t.machine.settle(gen, false)
	}
}

func errString(err error) string {
	if err == nil {
		return "advertiser returned"
	}
	return err.Error()
}

// Stop implements Controller
func (t *Transmitter) Stop() {
	t.handleMutex.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.opened {
		if err := util.CatchErrs(t.methods.Close); err != nil {
			log.WithError(err).Warn("could not close advertiser")
		}
		t.opened = false
	}
	t.handleMutex.Unlock()
	t.reset()
}

// IsAdvertising implements Controller
func (t *Transmitter) IsAdvertising() bool {
	return t.State() == Advertising
}

// IsSupported implements Controller
func (t *Transmitter) IsSupported() models.SupportCode {
	return t.methods.Probe()
}
