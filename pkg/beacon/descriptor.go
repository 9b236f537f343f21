package beacon

import (
	"github.com/Krajiyah/beacon-sdk/pkg/layout"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/pkg/errors"
)

// Descriptor is the native beacon built from one BeaconData
type Descriptor struct {
	Layout *layout.Layout
	Beacon layout.Beacon
	Frame  layout.Frame
	Mode   models.AdvertiseMode
}

// NewDescriptor builds the frame a transmitter advertises. Eddystone-UID beacons carry the
// identifier as their second id; every other layout carries major and minor (0 when unset).
func NewDescriptor(data models.BeaconData) (*Descriptor, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	l, err := layout.Lookup(data.LayoutExpr())
	if err != nil {
		return nil, err
	}
	u, err := data.ParsedUUID()
	if err != nil {
		return nil, err
	}
	ids := [][]byte{layout.UUIDIdentifier(u)}
	if l.IsEddystoneUID() {
		instance, err := layout.ParseIdentifier(data.Identifier)
		if err != nil {
			return nil, errors.Wrap(err, "eddystone instance")
		}
		ids = append(ids, instance)
	} else {
		ids = append(ids, layout.Uint16Identifier(valueOr(data.MajorID)), layout.Uint16Identifier(valueOr(data.MinorID)))
	}
	b := layout.Beacon{
		Identifiers:  ids,
		Power:        data.Power(),
		Data:         data.DataFields(),
		Manufacturer: data.Manufacturer(),
	}
	frame, err := l.Encode(b)
	if err != nil {
		return nil, err
	}
	return &Descriptor{Layout: l, Beacon: b, Frame: frame, Mode: data.Mode()}, nil
}

func valueOr(v *uint16) uint16 {
	if v == nil {
		return 0
	}
	return *v
}

// BeaconRegion is the proximity beacon a peripheral manager advertises
type BeaconRegion struct {
	UUID          [16]byte
	Major         uint16
	Minor         uint16
	MeasuredPower int8
	Identifier    string
}

// NewBeaconRegion builds the region advertised by a peripheral manager. Layout, manufacturer
// and extra data do not apply to it.
func NewBeaconRegion(data models.BeaconData) (*BeaconRegion, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	u, err := data.ParsedUUID()
	if err != nil {
		return nil, err
	}
	power := data.Power()
	if power < -128 || power > 127 {
		return nil, errors.Wrapf(models.ErrInvalidArgument, "measured power %d", power)
	}
	r := &BeaconRegion{Major: valueOr(data.MajorID), Minor: valueOr(data.MinorID), MeasuredPower: int8(power), Identifier: data.Identifier}
	copy(r.UUID[:], u[:])
	return r, nil
}

// PeripheralData is the 21 byte proximity payload: uuid, major, minor, measured power
func (r *BeaconRegion) PeripheralData() []byte {
	out := make([]byte, 0, 21)
	out = append(out, r.UUID[:]...)
	out = append(out, layout.Uint16Identifier(r.Major)...)
	out = append(out, layout.Uint16Identifier(r.Minor)...)
	return append(out, byte(r.MeasuredPower))
}

// ManufacturerFrame is the region encoded as an iBeacon manufacturer data frame
func (r *BeaconRegion) ManufacturerFrame() (layout.Frame, error) {
	l, err := layout.Parse(layout.IBeacon)
	if err != nil {
		return layout.Frame{}, err
	}
	return l.Encode(layout.Beacon{
		Identifiers:  [][]byte{r.UUID[:], layout.Uint16Identifier(r.Major), layout.Uint16Identifier(r.Minor)},
		Power:        int(r.MeasuredPower),
		Manufacturer: util.AppleManufacturer,
	})
}
