// Package layout parses beacon layout expressions and encodes beacons into advertisement frames.
//
// A layout is a comma separated list of terms, each naming a byte range of the frame:
//
//	m:2-3=beac   type code that must appear at bytes 2-3
//	s:0-1=feaa   16-bit service uuid; the frame is advertised as service data
//	i:4-19       identifier (suffix l for little endian)
//	p:24-24      calibrated power, optionally p:3-3:-41 with a dBm correction
//	d:25-25      data field (suffix l for little endian)
//
// Offsets count from the start of the manufacturer specific data, so bytes 0-1 hold the
// company id (or the service uuid for service layouts).
package layout

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/pkg/errors"
)

// Well known layouts
const (
	AltBeacon    = "m:2-3=beac,i:4-19,i:20-21,i:22-23,p:24-24,d:25-25"
	IBeacon      = "m:2-3=0215,i:4-19,i:20-21,i:22-23,p:24-24"
	EddystoneUID = "s:0-1=feaa,m:2-2=00,p:3-3:-41,i:4-13,i:14-19"
)

var named = map[string]string{
	"altbeacon":     AltBeacon,
	"ibeacon":       IBeacon,
	"eddystone_uid": EddystoneUID,
	"eddystone-uid": EddystoneUID,
}

// FieldKind is the role of a byte range inside a frame
type FieldKind int

const (
	Matcher FieldKind = iota
	Service
	Identifier
	Power
	Data
)

func (k FieldKind) String() string {
	return []string{"Matcher", "Service", "Identifier", "Power", "Data"}[k]
}

// Field is one parsed term of a layout
type Field struct {
	Kind         FieldKind
	Start        int
	End          int
	LittleEndian bool
	Value        []byte
	Correction   int
}

// Len is the number of bytes the field occupies
func (f Field) Len() int { return f.End - f.Start + 1 }

// Layout is a parsed layout expression
type Layout struct {
	Expr        string
	Matcher     *Field
	Service     *Field
	PowerField  *Field
	Identifiers []Field
	DataFields  []Field
	length      int
}

var (
	identifierTerm = regexp.MustCompile(`^i:(\d+)-(\d+)([lbv]*)$`)
	matcherTerm    = regexp.MustCompile(`^m:(\d+)-(\d+)=([0-9A-Fa-f]+)$`)
	serviceTerm    = regexp.MustCompile(`^s:(\d+)-(\d+)=([0-9A-Fa-f]+)$`)
	powerTerm      = regexp.MustCompile(`^p:(\d+)-(\d+)(?::(-?\d+))?$`)
	dataTerm       = regexp.MustCompile(`^d:(\d+)-(\d+)([lb]*)$`)
)

// Lookup resolves a layout name ("altbeacon", "ibeacon", "eddystone_uid") or a raw
// expression. An empty name selects AltBeacon.
func Lookup(nameOrExpr string) (*Layout, error) {
	key := strings.ToLower(strings.TrimSpace(nameOrExpr))
	if key == "" {
		return Parse(AltBeacon)
	}
	if expr, ok := named[key]; ok {
		return Parse(expr)
	}
	return Parse(nameOrExpr)
}

// Parse parses a layout expression
func Parse(expr string) (*Layout, error) {
	l := &Layout{Expr: expr}
	for _, raw := range strings.Split(expr, ",") {
		term := strings.TrimSpace(raw)
		if err := l.addTerm(term); err != nil {
			return nil, errors.Wrapf(models.ErrInvalidLayout, "%q: %s", term, err)
		}
	}
	if err := l.check(); err != nil {
		return nil, errors.Wrapf(models.ErrInvalidLayout, "%q: %s", expr, err)
	}
	return l, nil
}

func parseRange(start, end string) (int, int, error) {
	s, err := strconv.Atoi(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return 0, 0, err
	}
	if e < s {
		return 0, 0, errors.Errorf("range %d-%d is reversed", s, e)
	}
	return s, e, nil
}

func (l *Layout) addTerm(term string) error {
	if m := identifierTerm.FindStringSubmatch(term); m != nil {
		s, e, err := parseRange(m[1], m[2])
		if err != nil {
			return err
		}
		if strings.Contains(m[3], "v") {
			return errors.New("variable length identifiers are not supported")
		}
		l.Identifiers = append(l.Identifiers, Field{Kind: Identifier, Start: s, End: e, LittleEndian: strings.Contains(m[3], "l")})
		return nil
	}
	if m := matcherTerm.FindStringSubmatch(term); m != nil {
		if l.Matcher != nil {
			return errors.New("duplicate type code term")
		}
		f, err := valueField(Matcher, m)
		if err != nil {
			return err
		}
		l.Matcher = f
		return nil
	}
	if m := serviceTerm.FindStringSubmatch(term); m != nil {
		if l.Service != nil {
			return errors.New("duplicate service term")
		}
		f, err := valueField(Service, m)
		if err != nil {
			return err
		}
		if f.Start != 0 || f.Len() != 2 {
			return errors.New("service uuid must occupy bytes 0-1")
		}
		l.Service = f
		return nil
	}
	if m := powerTerm.FindStringSubmatch(term); m != nil {
		if l.PowerField != nil {
			return errors.New("duplicate power term")
		}
		s, e, err := parseRange(m[1], m[2])
		if err != nil {
			return err
		}
		if s != e {
			return errors.New("power must be a single byte")
		}
		f := &Field{Kind: Power, Start: s, End: e}
		if m[3] != "" {
			if f.Correction, err = strconv.Atoi(m[3]); err != nil {
				return err
			}
		}
		l.PowerField = f
		return nil
	}
	if m := dataTerm.FindStringSubmatch(term); m != nil {
		s, e, err := parseRange(m[1], m[2])
		if err != nil {
			return err
		}
		if e-s+1 > 8 {
			return errors.New("data fields are at most 8 bytes")
		}
		l.DataFields = append(l.DataFields, Field{Kind: Data, Start: s, End: e, LittleEndian: strings.Contains(m[3], "l")})
		return nil
	}
	return errors.New("unrecognised term")
}

func valueField(kind FieldKind, m []string) (*Field, error) {
	s, e, err := parseRange(m[1], m[2])
	if err != nil {
		return nil, err
	}
	value, err := hex.DecodeString(m[3])
	if err != nil {
		return nil, err
	}
	if len(value) != e-s+1 {
		return nil, errors.Errorf("value %s does not fill bytes %d-%d", m[3], s, e)
	}
	return &Field{Kind: kind, Start: s, End: e, Value: value}, nil
}

func (l *Layout) fields() []Field {
	var out []Field
	for _, f := range []*Field{l.Service, l.Matcher, l.PowerField} {
		if f != nil {
			out = append(out, *f)
		}
	}
	out = append(out, l.Identifiers...)
	return append(out, l.DataFields...)
}

func (l *Layout) check() error {
	if len(l.Identifiers) == 0 {
		return errors.New("layout has no identifier")
	}
	if l.Service == nil && l.Matcher == nil {
		return errors.New("manufacturer layouts need a type code")
	}
	used := map[int]FieldKind{}
	for _, f := range l.fields() {
		if f.Kind != Service && f.Start < 2 {
			return errors.Errorf("%s at byte %d overlaps the company id / service uuid", f.Kind, f.Start)
		}
		for i := f.Start; i <= f.End; i++ {
			if other, ok := used[i]; ok {
				return errors.Errorf("%s overlaps %s at byte %d", f.Kind, other, i)
			}
			used[i] = f.Kind
		}
		if f.End+1 > l.length {
			l.length = f.End + 1
		}
	}
	return nil
}

// Len is the frame length including the two leading id bytes
func (l *Layout) Len() int { return l.length }

// IsServiceLayout reports whether frames are advertised as service data
func (l *Layout) IsServiceLayout() bool { return l.Service != nil }

// ServiceUUID16 returns the 16-bit service uuid of a service layout
func (l *Layout) ServiceUUID16() uint16 {
	if l.Service == nil {
		return 0
	}
	return uint16(l.Service.Value[0])<<8 | uint16(l.Service.Value[1])
}

// IsEddystoneUID reports whether l is the Eddystone-UID frame layout
func (l *Layout) IsEddystoneUID() bool {
	return l.IsServiceLayout() && l.ServiceUUID16() == 0xFEAA &&
		l.Matcher != nil && len(l.Matcher.Value) == 1 && l.Matcher.Value[0] == 0x00
}
