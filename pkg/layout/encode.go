package layout

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FrameKind tells the advertiser which AD structure carries the frame
type FrameKind int

const (
	// ManufacturerData frames go out as manufacturer specific data under CompanyID
	ManufacturerData FrameKind = iota
	// ServiceData frames go out as 16-bit service data under ServiceUUID
	ServiceData
)

// Beacon holds the values written into a layout
type Beacon struct {
	Identifiers  [][]byte
	Power        int
	Data         []int64
	Manufacturer uint16
}

// Frame is an encoded beacon, minus the two leading id bytes
type Frame struct {
	Kind        FrameKind
	CompanyID   uint16
	ServiceUUID uint16
	Data        []byte
}

// flags AD + AD header (length, type) + 16-bit id
const (
	flagsOverhead       = 3
	adOverhead          = 4
	serviceListOverhead = 4
)

// PayloadLen is the number of advertising bytes the frame occupies once wrapped in AD structures
func (f Frame) PayloadLen() int {
	n := flagsOverhead + adOverhead + len(f.Data)
	if f.Kind == ServiceData {
		n += serviceListOverhead
	}
	return n
}

// Encode writes b into the layout
func (l *Layout) Encode(b Beacon) (Frame, error) {
	if len(b.Identifiers) < len(l.Identifiers) {
		return Frame{}, errors.Wrapf(models.ErrInvalidArgument, "layout needs %d identifiers, beacon has %d", len(l.Identifiers), len(b.Identifiers))
	}
	buf := make([]byte, l.length)
	if l.Matcher != nil {
		copy(buf[l.Matcher.Start:], l.Matcher.Value)
	}
	for i, f := range l.Identifiers {
		id, err := fit(b.Identifiers[i], f.Len())
		if err != nil {
			return Frame{}, errors.Wrapf(err, "identifier %d", i+1)
		}
		if f.LittleEndian {
			id = reversed(id)
		}
		copy(buf[f.Start:], id)
	}
	if l.PowerField != nil {
		v := b.Power - l.PowerField.Correction
		if v < -128 || v > 127 {
			return Frame{}, errors.Wrapf(models.ErrInvalidArgument, "power %d does not fit a byte", b.Power)
		}
		buf[l.PowerField.Start] = byte(int8(v))
	}
	for i, f := range l.DataFields {
		var v int64
		if i < len(b.Data) {
			v = b.Data[i]
		}
		putInt(buf[f.Start:f.End+1], v, f.LittleEndian)
	}

	frame := Frame{Kind: ManufacturerData, CompanyID: b.Manufacturer, Data: buf[2:]}
	if l.IsServiceLayout() {
		frame = Frame{Kind: ServiceData, ServiceUUID: l.ServiceUUID16(), Data: buf[2:]}
	}
	if frame.PayloadLen() > util.MaxAdvertisingPayload {
		return Frame{}, errors.Wrapf(models.ErrInvalidLayout, "frame needs %d bytes, advertisements carry %d", frame.PayloadLen(), util.MaxAdvertisingPayload)
	}
	return frame, nil
}

// fit pads id with leading zeros to n bytes. A 16 byte uuid squeezed into a 10 byte field
// keeps bytes 0-3 and 10-15 (Eddystone elided uuid namespace).
func fit(id []byte, n int) ([]byte, error) {
	if len(id) == 16 && n == 10 {
		out := make([]byte, 0, 10)
		out = append(out, id[0:4]...)
		return append(out, id[10:16]...), nil
	}
	if len(id) > n {
		return nil, errors.Wrapf(models.ErrInvalidArgument, "%d byte value does not fit %d byte field", len(id), n)
	}
	out := make([]byte, n)
	copy(out[n-len(id):], id)
	return out, nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func putInt(dst []byte, v int64, littleEndian bool) {
	n := len(dst)
	for i := 0; i < n; i++ {
		by := byte(v >> (8 * uint(i)))
		if littleEndian {
			dst[i] = by
		} else {
			dst[n-1-i] = by
		}
	}
}

// UUIDIdentifier returns the 16 bytes of a uuid identifier
func UUIDIdentifier(u uuid.UUID) []byte {
	out := make([]byte, 16)
	copy(out, u[:])
	return out
}

// Uint16Identifier returns a big endian two byte identifier
func Uint16Identifier(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// ParseIdentifier reads a textual identifier: a uuid, a 0x prefixed hex string, or a
// decimal number in 0..65535.
func ParseIdentifier(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if u, err := uuid.Parse(s); err == nil && strings.Count(s, "-") == 4 {
		return UUIDIdentifier(u), nil
	}
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		digits := s[2:]
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hex.DecodeString(digits)
		if err != nil || len(b) == 0 {
			return nil, errors.Wrapf(models.ErrInvalidArgument, "identifier %q is not hex", s)
		}
		return b, nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil, errors.Wrapf(models.ErrInvalidArgument, "identifier %q is not a uuid, hex or 16-bit number", s)
	}
	return Uint16Identifier(uint16(v)), nil
}
