package layout

import (
	"testing"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/google/uuid"
	"gotest.tools/assert"
)

const testUUID = "E2C56DB5-DFFB-48D2-B060-D0F5A71096E0"

var uuidBytes = []byte{0xE2, 0xC5, 0x6D, 0xB5, 0xDF, 0xFB, 0x48, 0xD2, 0xB0, 0x60, 0xD0, 0xF5, 0xA7, 0x10, 0x96, 0xE0}

func testBeacon(ids ...[]byte) Beacon {
	return Beacon{Identifiers: ids, Power: -59, Data: []int64{0}, Manufacturer: 0x0118}
}

func TestParseAltBeacon(t *testing.T) {
	l, err := Parse(AltBeacon)
	assert.NilError(t, err)
	assert.Equal(t, len(l.Identifiers), 3)
	assert.Equal(t, len(l.DataFields), 1)
	assert.Equal(t, l.Len(), 26)
	assert.DeepEqual(t, l.Matcher.Value, []byte{0xbe, 0xac})
	assert.Assert(t, !l.IsServiceLayout())
	assert.Assert(t, !l.IsEddystoneUID())
}

func TestParseEddystoneUID(t *testing.T) {
	l, err := Lookup("eddystone_uid")
	assert.NilError(t, err)
	assert.Assert(t, l.IsServiceLayout())
	assert.Assert(t, l.IsEddystoneUID())
	assert.Equal(t, l.ServiceUUID16(), uint16(0xFEAA))
	assert.Equal(t, l.PowerField.Correction, -41)
	assert.Equal(t, l.Identifiers[0].Len(), 10)
	assert.Equal(t, l.Identifiers[1].Len(), 6)
}

func TestLookup(t *testing.T) {
	l, err := Lookup("")
	assert.NilError(t, err)
	assert.Equal(t, l.Expr, AltBeacon)
	l, err = Lookup("IBeacon")
	assert.NilError(t, err)
	assert.Equal(t, l.Expr, IBeacon)
	l, err = Lookup(EddystoneUID)
	assert.NilError(t, err)
	assert.Assert(t, l.IsEddystoneUID())
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"m:2-3=beac",
		"i:4-19",
		"m:2-3=beac,i:4-19,x",
		"m:2-3=bea,i:4-19",
		"m:3-2=beac,i:4-19",
		"m:2-3=beac,i:3-19",
		"m:2-3=beac,m:2-3=beac,i:4-19",
		"m:2-3=beac,i:4-19,p:20-21",
		"m:2-3=beac,i:4-19v",
		"s:2-3=feaa,i:4-13",
		"m:0-1=beac,i:4-19",
	} {
		_, err := Parse(expr)
		assert.Assert(t, models.IsKind(err, models.ErrInvalidLayout), "expr %q: %v", expr, err)
	}
}

func TestEncodeAltBeacon(t *testing.T) {
	l, err := Parse(AltBeacon)
	assert.NilError(t, err)
	frame, err := l.Encode(testBeacon(uuidBytes, Uint16Identifier(1), Uint16Identifier(2)))
	assert.NilError(t, err)
	assert.Equal(t, frame.Kind, ManufacturerData)
	assert.Equal(t, frame.CompanyID, uint16(0x0118))
	expected := append([]byte{0xbe, 0xac}, uuidBytes...)
	expected = append(expected, 0x00, 0x01, 0x00, 0x02, 0xC5, 0x00)
	assert.DeepEqual(t, frame.Data, expected)
	assert.Equal(t, frame.PayloadLen(), 31)
}

func TestEncodeIBeacon(t *testing.T) {
	l, err := Lookup("ibeacon")
	assert.NilError(t, err)
	b := testBeacon(uuidBytes, Uint16Identifier(0x1234), Uint16Identifier(0xABCD))
	b.Manufacturer = 0x004C
	frame, err := l.Encode(b)
	assert.NilError(t, err)
	assert.DeepEqual(t, frame.Data[:2], []byte{0x02, 0x15})
	assert.DeepEqual(t, frame.Data[18:], []byte{0x12, 0x34, 0xAB, 0xCD, 0xC5})
}

func TestEncodeEddystoneUID(t *testing.T) {
	l, err := Lookup("eddystone_uid")
	assert.NilError(t, err)
	instance, err := ParseIdentifier("0x0102030405FF")
	assert.NilError(t, err)
	frame, err := l.Encode(testBeacon(uuidBytes, instance))
	assert.NilError(t, err)
	assert.Equal(t, frame.Kind, ServiceData)
	assert.Equal(t, frame.ServiceUUID, uint16(0xFEAA))
	expected := []byte{0x00, 0xEE, 0xE2, 0xC5, 0x6D, 0xB5, 0xD0, 0xF5, 0xA7, 0x10, 0x96, 0xE0, 0x01, 0x02, 0x03, 0x04, 0x05, 0xFF}
	assert.DeepEqual(t, frame.Data, expected)
}

func TestEncodeLittleEndianAndData(t *testing.T) {
	l, err := Parse("m:2-3=beac,i:4-5l,d:6-7,d:8-9l")
	assert.NilError(t, err)
	b := Beacon{Identifiers: [][]byte{{0x12, 0x34}}, Data: []int64{0x0102}, Manufacturer: 1}
	frame, err := l.Encode(b)
	assert.NilError(t, err)
	assert.DeepEqual(t, frame.Data, []byte{0xbe, 0xac, 0x34, 0x12, 0x01, 0x02, 0x00, 0x00})
}

func TestEncodeErrors(t *testing.T) {
	l, err := Parse(AltBeacon)
	assert.NilError(t, err)
	_, err = l.Encode(testBeacon(uuidBytes))
	assert.Assert(t, models.IsKind(err, models.ErrInvalidArgument))

	_, err = l.Encode(testBeacon(uuidBytes, uuidBytes, Uint16Identifier(2)))
	assert.Assert(t, models.IsKind(err, models.ErrInvalidArgument))

	b := testBeacon(uuidBytes, Uint16Identifier(1), Uint16Identifier(2))
	b.Power = 300
	_, err = l.Encode(b)
	assert.Assert(t, models.IsKind(err, models.ErrInvalidArgument))

	long, err := Parse("m:2-3=beac,i:4-35")
	assert.NilError(t, err)
	_, err = long.Encode(testBeacon(uuidBytes))
	assert.Assert(t, models.IsKind(err, models.ErrInvalidLayout))
}

func TestParseIdentifier(t *testing.T) {
	b, err := ParseIdentifier(testUUID)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, UUIDIdentifier(uuid.MustParse(testUUID)))

	b, err = ParseIdentifier("0xABC")
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0x0A, 0xBC})

	b, err = ParseIdentifier("258")
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0x01, 0x02})

	for _, s := range []string{"region1", "0x", "0xZZ", "70000", "-1"} {
		_, err = ParseIdentifier(s)
		assert.Assert(t, models.IsKind(err, models.ErrInvalidArgument), s)
	}
}
