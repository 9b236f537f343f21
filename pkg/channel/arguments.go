package channel

import (
	"encoding/json"
	"math"

	"github.com/Krajiyah/beacon-sdk/pkg/models"
	"github.com/pkg/errors"
)

// Argument keys of the start command
const (
	ArgUUID              = "uuid"
	ArgIdentifier        = "identifier"
	ArgMajorID           = "majorId"
	ArgMinorID           = "minorId"
	ArgTransmissionPower = "transmissionPower"
	ArgLayout            = "layout"
	ArgManufacturerID    = "manufacturerId"
	ArgExtraData         = "extraData"
	ArgAdvertiseMode     = "advertiseMode"
)

// BeaconDataFromArguments reads start arguments. uuid and identifier are required strings;
// the other keys are optional and a nil value counts as absent. Numbers may arrive as any Go
// integer type, as json.Number or as an integral float64.
func BeaconDataFromArguments(args map[string]interface{}) (models.BeaconData, error) {
	var data models.BeaconData
	var err error
	if data.UUID, err = requiredString(args, ArgUUID); err != nil {
		return data, err
	}
	if data.Identifier, err = requiredString(args, ArgIdentifier); err != nil {
		return data, err
	}
	if data.MajorID, err = optionalUint16(args, ArgMajorID); err != nil {
		return data, err
	}
	if data.MinorID, err = optionalUint16(args, ArgMinorID); err != nil {
		return data, err
	}
	if data.ManufacturerID, err = optionalUint16(args, ArgManufacturerID); err != nil {
		return data, err
	}
	if v, ok := args[ArgTransmissionPower]; ok && v != nil {
		power, err := toInt(v)
		if err != nil {
			return data, errors.Wrap(err, ArgTransmissionPower)
		}
		data.TransmissionPower = models.Int(int(power))
	}
	if v, ok := args[ArgLayout]; ok && v != nil {
		layout, ok := v.(string)
		if !ok {
			return data, errors.Wrapf(models.ErrInvalidArgument, "%s must be a string", ArgLayout)
		}
		data.Layout = models.String(layout)
	}
	if v, ok := args[ArgExtraData]; ok && v != nil {
		if data.ExtraData, err = toInts(v); err != nil {
			return data, errors.Wrap(err, ArgExtraData)
		}
	}
	if v, ok := args[ArgAdvertiseMode]; ok && v != nil {
		mode, err := toInt(v)
		if err != nil {
			return data, errors.Wrap(err, ArgAdvertiseMode)
		}
		if !models.AdvertiseMode(mode).Valid() {
			return data, errors.Wrapf(models.ErrInvalidArgument, "%s %d", ArgAdvertiseMode, mode)
		}
		data.AdvertiseMode = models.Mode(models.AdvertiseMode(mode))
	}
	return data, data.Validate()
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", errors.Wrap(models.ErrMissingRequiredField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(models.ErrInvalidArgument, "%s must be a string", key)
	}
	if s == "" {
		return "", errors.Wrap(models.ErrMissingRequiredField, key)
	}
	return s, nil
}

func optionalUint16(args map[string]interface{}, key string) (*uint16, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, errors.Wrap(err, key)
	}
	if n < 0 || n > math.MaxUint16 {
		return nil, errors.Wrapf(models.ErrInvalidArgument, "%s %d out of range", key, n)
	}
	return models.Uint16(uint16(n)), nil
}

func toInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		return uintToInt(uint64(n))
	case uint64:
		return uintToInt(n)
	case float64:
		// MaxInt64 rounds up to 2^63 as a float64
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, errors.Wrapf(models.ErrInvalidArgument, "%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Wrapf(models.ErrInvalidArgument, "%v is not an integer", n)
		}
		return i, nil
	}
	return 0, errors.Wrapf(models.ErrInvalidArgument, "%T is not a number", v)
}

func uintToInt(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, errors.Wrapf(models.ErrInvalidArgument, "%v is out of range", n)
	}
	return int64(n), nil
}

func toInts(v interface{}) ([]int64, error) {
	switch list := v.(type) {
	case []int64:
		out := make([]int64, len(list))
		copy(out, list)
		return out, nil
	case []int:
		out := make([]int64, len(list))
		for i, n := range list {
			out[i] = int64(n)
		}
		return out, nil
	case []interface{}:
		out := make([]int64, len(list))
		for i, item := range list {
			n, err := toInt(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, errors.Wrapf(models.ErrInvalidArgument, "%T is not a list", v)
}

// Arguments renders data as start arguments, the inverse of BeaconDataFromArguments
func Arguments(data models.BeaconData) map[string]interface{} {
	args := map[string]interface{}{
		ArgUUID:       data.UUID,
		ArgIdentifier: data.Identifier,
	}
	if data.MajorID != nil {
		args[ArgMajorID] = *data.MajorID
	}
	if data.MinorID != nil {
		args[ArgMinorID] = *data.MinorID
	}
	if data.TransmissionPower != nil {
		args[ArgTransmissionPower] = *data.TransmissionPower
	}
	if data.Layout != nil {
		args[ArgLayout] = *data.Layout
	}
	if data.ManufacturerID != nil {
		args[ArgManufacturerID] = *data.ManufacturerID
	}
	if len(data.ExtraData) > 0 {
		args[ArgExtraData] = data.DataFields()
	}
	if data.AdvertiseMode != nil {
		args[ArgAdvertiseMode] = int(*data.AdvertiseMode)
	}
	return args
}
