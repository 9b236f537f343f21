package models

import (
	"strings"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AdvertiseMode trades advertising latency against power draw
type AdvertiseMode int

const (
	// LowPower advertises roughly once a second
	LowPower AdvertiseMode = iota
	// Balanced advertises roughly four times a second
	Balanced
	// LowLatency advertises roughly ten times a second
	LowLatency
)

func (m AdvertiseMode) String() string {
	switch m {
	case LowPower:
		return "LowPower"
	case Balanced:
		return "Balanced"
	case LowLatency:
		return "LowLatency"
	}
	return "Unknown"
}

// Valid reports whether m is one of the known modes
func (m AdvertiseMode) Valid() bool { return m >= LowPower && m <= LowLatency }

// Interval is the advertising interval the mode maps to
func (m AdvertiseMode) Interval() time.Duration {
	switch m {
	case LowPower:
		return time.Millisecond * 1000
	case LowLatency:
		return time.Millisecond * 100
	}
	return time.Millisecond * 250
}

// BeaconData is the configuration of one advertising session.
// It is built once per start and never modified afterwards.
type BeaconData struct {
	UUID              string
	Identifier        string
	MajorID           *uint16
	MinorID           *uint16
	TransmissionPower *int
	Layout            *string
	ManufacturerID    *uint16
	ExtraData         []int64
	AdvertiseMode     *AdvertiseMode
}

// Validate checks the required fields
func (b BeaconData) Validate() error {
	if strings.TrimSpace(b.UUID) == "" {
		return errors.Wrap(ErrMissingRequiredField, "uuid")
	}
	if b.Identifier == "" {
		return errors.Wrap(ErrMissingRequiredField, "identifier")
	}
	if _, err := b.ParsedUUID(); err != nil {
		return err
	}
	if b.AdvertiseMode != nil && !b.AdvertiseMode.Valid() {
		return errors.Wrapf(ErrInvalidArgument, "advertiseMode %d", *b.AdvertiseMode)
	}
	return nil
}

// ParsedUUID returns the proximity uuid as bytes
func (b BeaconData) ParsedUUID() (uuid.UUID, error) {
	u, err := uuid.Parse(b.UUID)
	if err != nil {
		return uuid.Nil, errors.Wrapf(ErrInvalidUUID, "%q: %s", b.UUID, err)
	}
	return u, nil
}

// Power returns the calibrated power at 1m, defaulting to -59
func (b BeaconData) Power() int {
	if b.TransmissionPower == nil {
		return util.DefaultTransmissionPower
	}
	return *b.TransmissionPower
}

// Manufacturer returns the company id, defaulting to Radius Networks
func (b BeaconData) Manufacturer() uint16 {
	if b.ManufacturerID == nil {
		return util.RadiusNetworksManufacturer
	}
	return *b.ManufacturerID
}

// DataFields returns the auxiliary data fields, defaulting to a single zero field
func (b BeaconData) DataFields() []int64 {
	if len(b.ExtraData) == 0 {
		return []int64{0}
	}
	out := make([]int64, len(b.ExtraData))
	copy(out, b.ExtraData)
	return out
}

// Mode returns the advertise mode, defaulting to Balanced
func (b BeaconData) Mode() AdvertiseMode {
	if b.AdvertiseMode == nil {
		return AdvertiseMode(util.DefaultAdvertiseMode)
	}
	return *b.AdvertiseMode
}

// LayoutExpr returns the requested layout, or "" for the platform default
func (b BeaconData) LayoutExpr() string {
	if b.Layout == nil {
		return ""
	}
	return *b.Layout
}

// Uint16 is a helper for filling optional 16-bit fields
func Uint16(v uint16) *uint16 { return &v }

// Int is a helper for filling optional int fields
func Int(v int) *int { return &v }

// String is a helper for filling optional string fields
func String(v string) *string { return &v }

// Mode is a helper for filling the optional advertise mode
func Mode(v AdvertiseMode) *AdvertiseMode { return &v }
