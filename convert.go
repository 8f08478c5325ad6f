package beans

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// convertValue coerces a suggested injection value to the target type.
// Assignable values pass through; strings additionally parse into the
// basic kinds, time.Duration, and comma-separated slices thereof.
func convertValue(v any, target reflect.Type) (any, error) {
	if v == nil {
		return nil, &ValueConversionError{Value: v, Target: target}
	}

	vt := reflect.TypeOf(v)
	if vt.AssignableTo(target) {
		return v, nil
	}
	if vt.ConvertibleTo(target) && vt.Kind() != reflect.String {
		return reflect.ValueOf(v).Convert(target).Interface(), nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, &ValueConversionError{Value: v, Target: target}
	}
	return parseString(s, target)
}

func parseString(s string, target reflect.Type) (any, error) {
	if target == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return nil, &ValueConversionError{Value: s, Target: target, Cause: err}
		}
		return d, nil
	}

	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(target).Interface(), nil

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, &ValueConversionError{Value: s, Target: target, Cause: err}
		}
		return convertKind(b, target), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, target.Bits())
		if err != nil {
			return nil, &ValueConversionError{Value: s, Target: target, Cause: err}
		}
		return convertKind(i, target), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(s), 10, target.Bits())
		if err != nil {
			return nil, &ValueConversionError{Value: s, Target: target, Cause: err}
		}
		return convertKind(u, target), nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), target.Bits())
		if err != nil {
			return nil, &ValueConversionError{Value: s, Target: target, Cause: err}
		}
		return convertKind(f, target), nil

	case reflect.Slice:
		parts := strings.Split(s, ",")
		out := reflect.MakeSlice(target, 0, len(parts))
		for _, part := range parts {
			elem, err := parseString(strings.TrimSpace(part), target.Elem())
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(elem))
		}
		return out.Interface(), nil

	default:
		return nil, &ValueConversionError{
			Value:  s,
			Target: target,
			Cause:  fmt.Errorf("unsupported target kind %s", target.Kind()),
		}
	}
}

func convertKind(v any, target reflect.Type) any {
	return reflect.ValueOf(v).Convert(target).Interface()
}
