package models

import (
	"testing"
	"time"

	"github.com/Krajiyah/beacon-sdk/pkg/util"
	"gotest.tools/assert"
)

const testUUID = "E2C56DB5-DFFB-48D2-B060-D0F5A71096E0"

func TestBeaconDataDefaults(t *testing.T) {
	b := BeaconData{UUID: testUUID, Identifier: "region1"}
	assert.NilError(t, b.Validate())
	assert.Equal(t, b.Power(), -59)
	assert.Equal(t, b.Manufacturer(), util.RadiusNetworksManufacturer)
	assert.DeepEqual(t, b.DataFields(), []int64{0})
	assert.Equal(t, b.Mode(), Balanced)
	assert.Equal(t, b.LayoutExpr(), "")
}

func TestBeaconDataOverrides(t *testing.T) {
	b := BeaconData{
		UUID: testUUID, Identifier: "region1",
		TransmissionPower: Int(-70), ManufacturerID: Uint16(0x004C),
		ExtraData: []int64{7, 8}, AdvertiseMode: Mode(LowLatency), Layout: String("ibeacon"),
	}
	assert.Equal(t, b.Power(), -70)
	assert.Equal(t, b.Manufacturer(), uint16(0x004C))
	assert.DeepEqual(t, b.DataFields(), []int64{7, 8})
	assert.Equal(t, b.Mode().Interval(), time.Millisecond*100)
	assert.Equal(t, b.LayoutExpr(), "ibeacon")
}

func TestBeaconDataValidate(t *testing.T) {
	err := BeaconData{Identifier: "region1"}.Validate()
	assert.Assert(t, IsKind(err, ErrMissingRequiredField))
	err = BeaconData{UUID: testUUID}.Validate()
	assert.Assert(t, IsKind(err, ErrMissingRequiredField))
	err = BeaconData{UUID: "not-a-uuid", Identifier: "region1"}.Validate()
	assert.Assert(t, IsKind(err, ErrInvalidUUID))
	err = BeaconData{UUID: testUUID, Identifier: "region1", AdvertiseMode: Mode(AdvertiseMode(9))}.Validate()
	assert.Assert(t, IsKind(err, ErrInvalidArgument))
}

func TestDataFieldsIsACopy(t *testing.T) {
	b := BeaconData{UUID: testUUID, Identifier: "r", ExtraData: []int64{1}}
	b.DataFields()[0] = 99
	assert.DeepEqual(t, b.ExtraData, []int64{1})
}

func TestPermissionStatusNames(t *testing.T) {
	assert.Equal(t, AuthorizedWhenInUse.String(), "AUTHORIZED_WHEN_IN_USE")
	assert.Equal(t, PermissionStatus(42).String(), "UNKNOWN")
	assert.Equal(t, ParsePermissionStatus("POWERED_OFF"), PoweredOff)
	assert.Equal(t, ParsePermissionStatus("nope"), Unknown)
	assert.Assert(t, AuthorizedAlways.IsLocationAuthorized())
	assert.Assert(t, !Authorized.IsLocationAuthorized())
}

func TestPermissionsToMapHasEveryCategory(t *testing.T) {
	p := Permissions{Bluetooth: PoweredOff}
	assert.DeepEqual(t, p.ToMap(), map[string]string{
		"location":           "NOT_DETERMINED",
		"bluetooth":          "POWERED_OFF",
		"bluetoothConnect":   "NOT_DETERMINED",
		"bluetoothAdvertise": "NOT_DETERMINED",
	})
	assert.DeepEqual(t, NewPermissions().Categories(),
		[]PermissionCategory{Bluetooth, BluetoothAdvertise, BluetoothConnect, Location})
}

func TestSupportCodeString(t *testing.T) {
	assert.Equal(t, Supported.String(), "Supported")
	assert.Equal(t, NotSupportedCannotGetAdvertiser.String(), "NotSupportedCannotGetAdvertiser")
	assert.Equal(t, SupportCode(17).String(), "Unknown")
}

func TestListenerFunc(t *testing.T) {
	var got []bool
	var l AdvertisingListener = AdvertisingListenerFunc(func(b bool) { got = append(got, b) })
	l.OnAdvertisingStateChanged(true)
	assert.DeepEqual(t, got, []bool{true})
}
