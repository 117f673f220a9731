package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// Values are the decoded key/value pairs of a config version.
type Values map[string]any

// Kind is the type a property is converted to by Select.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDurationUnit
	KindEnum
)

// Field describes one property read by Select.
type Field struct {
	Name string
	Kind Kind
	// Allowed lists the accepted values of a KindEnum field, matched case-insensitively.
	Allowed []string
	// Optional fields are left out of the result when missing instead of failing.
	Optional bool
}

// Select reads and converts the given properties. A missing required property
// or a value that does not convert fails with ErrPropertyInvalid naming the field.
func (v Values) Select(fields ...Field) (Values, error) {
	result := make(Values, len(fields))
	for _, field := range fields {
		raw, ok := v[field.Name]
		if !ok || raw == nil {
			if field.Optional {
				continue
			}
			return nil, fmt.Errorf("%w: %s is missing", ErrPropertyInvalid, field.Name)
		}

		converted, err := convert(raw, field)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPropertyInvalid, field.Name, err)
		}
		result[field.Name] = converted
	}
	return result, nil
}

// Int returns an integer property, converting numeric strings and JSON numbers.
func (v Values) Int(name string) (int, error) {
	selected, err := v.Select(Field{Name: name, Kind: KindInt})
	if err != nil {
		return 0, err
	}
	return selected[name].(int), nil
}

func convert(raw any, field Field) (any, error) {
	switch field.Kind {
	case KindString:
		return fmt.Sprint(raw), nil
	case KindInt:
		return toInt(raw)
	case KindFloat:
		return toFloat(raw)
	case KindBool:
		return toBool(raw)
	case KindDurationUnit:
		return toDurationUnit(raw)
	case KindEnum:
		return toEnum(raw, field.Allowed)
	default:
		return nil, fmt.Errorf("unknown kind %d", field.Kind)
	}
}

func toFloat(raw any) (float64, error) {
	switch value := raw.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to number", raw)
	}
}

func toInt(raw any) (int, error) {
	f, err := toFloat(raw)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", raw)
	}
	return int(f), nil
}

func toBool(raw any) (bool, error) {
	switch value := raw.(type) {
	case bool:
		return value, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no", "":
			return false, nil
		}
		return false, fmt.Errorf("cannot convert %q to bool", value)
	default:
		f, err := toFloat(raw)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
}

func toDurationUnit(raw any) (keyDomain.DurationUnit, error) {
	d, err := keyDomain.ParseDuration("1" + strings.TrimSpace(fmt.Sprint(raw)))
	if err == nil {
		return d.Unit, nil
	}

	unit := keyDomain.DurationUnit(strings.ToLower(strings.TrimSpace(fmt.Sprint(raw))))
	if err := (keyDomain.Duration{Amount: 1, Unit: unit}).Validate(); err != nil {
		return "", err
	}
	return unit, nil
}

func toEnum(raw any, allowed []string) (string, error) {
	value := strings.TrimSpace(fmt.Sprint(raw))
	if slices.Contains(allowed, value) {
		return value, nil
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", value, allowed)
}
