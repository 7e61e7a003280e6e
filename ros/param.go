package ros

import (
	"math"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// ParamServer is the part of Node needed by the typed parameter getters.
type ParamServer interface {
	HasParam(name string) (bool, error)
	GetParam(name string) (interface{}, error)
}

// processArguments splits command line arguments into remappings,
// private parameters (_name:=value), special keys (__name:=value) and the
// remaining arguments.
func processArguments(args []string) (NameMap, NameMap, NameMap, []string) {
	mapping := make(NameMap)
	params := make(NameMap)
	specials := make(NameMap)
	rest := make([]string, 0)
	for _, arg := range args {
		components := strings.Split(arg, Remap)
		if len(components) != 2 {
			rest = append(rest, arg)
			continue
		}
		key, value := components[0], components[1]
		switch {
		case strings.HasPrefix(key, "__"):
			specials[key] = value
		case strings.HasPrefix(key, "_"):
			params[key[1:]] = value
		default:
			mapping[key] = value
		}
	}
	return mapping, params, specials, rest
}

// loadParamFromString interprets a command line parameter value. JSON
// scalars, arrays and objects are decoded; anything else is kept as the
// raw string, so `_frame_id:=world` yields "world". A value followed by
// anything but whitespace (`true,foo`) is also kept raw.
func loadParamFromString(s string) interface{} {
	data := []byte(strings.TrimSpace(s))
	value, dataType, end, err := jsonparser.Get(data)
	if err != nil || end < len(data) {
		return s
	}
	v, err := convertJSONValue(value, dataType)
	if err != nil {
		return s
	}
	return v
}

func convertJSONValue(value []byte, dataType jsonparser.ValueType) (interface{}, error) {
	switch dataType {
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i), nil
			}
			return float64(i), nil
		}
		return jsonparser.ParseFloat(value)
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Array:
		list := []interface{}{}
		var inner error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			item, err := convertJSONValue(v, t)
			if err != nil {
				inner = err
				return
			}
			list = append(list, item)
		})
		if err != nil {
			return nil, err
		}
		return list, inner
	case jsonparser.Object:
		m := make(map[string]interface{})
		err := jsonparser.ObjectEach(value, func(k []byte, v []byte, t jsonparser.ValueType, _ int) error {
			item, err := convertJSONValue(v, t)
			if err != nil {
				return err
			}
			m[string(k)] = item
			return nil
		})
		return m, err
	}
	return nil, errors.Errorf("unsupported JSON value %q", value)
}

func lookupParam(p ParamServer, name string) (interface{}, bool, error) {
	ok, err := p.HasParam(name)
	if err != nil {
		return nil, false, errors.Wrapf(err, "hasParam %s", name)
	}
	if !ok {
		return nil, false, nil
	}
	value, err := p.GetParam(name)
	if err != nil {
		return nil, false, errors.Wrapf(err, "getParam %s", name)
	}
	return value, true, nil
}

// GetParamString fetches a string parameter. found is false when the
// parameter is not set.
func GetParamString(p ParamServer, name string) (value string, found bool, err error) {
	v, found, err := lookupParam(p, name)
	if err != nil || !found {
		return "", found, err
	}
	s, ok := v.(string)
	if !ok {
		return "", true, errors.Errorf("parameter %s is %T, not a string", name, v)
	}
	return s, true, nil
}

// GetParamBool fetches a boolean parameter.
func GetParamBool(p ParamServer, name string) (value bool, found bool, err error) {
	v, found, err := lookupParam(p, name)
	if err != nil || !found {
		return false, found, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, true, errors.Errorf("parameter %s is %T, not a bool", name, v)
	}
	return b, true, nil
}

// GetParamFloat fetches a numeric parameter; integers are widened.
func GetParamFloat(p ParamServer, name string) (value float64, found bool, err error) {
	v, found, err := lookupParam(p, name)
	if err != nil || !found {
		return 0, found, err
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int32:
		return float64(n), true, nil
	}
	return 0, true, errors.Errorf("parameter %s is %T, not a number", name, v)
}

// GetParamInt fetches an integer parameter.
func GetParamInt(p ParamServer, name string) (value int, found bool, err error) {
	v, found, err := lookupParam(p, name)
	if err != nil || !found {
		return 0, found, err
	}
	switch n := v.(type) {
	case int32:
		return int(n), true, nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), true, nil
		}
	}
	return 0, true, errors.Errorf("parameter %s is %T, not an integer", name, v)
}
