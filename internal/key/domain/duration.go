package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/appconfig/internal/errors"
)

// DurationUnit is a calendar-aware rotation unit.
type DurationUnit string

const (
	UnitSecond DurationUnit = "second"
	UnitMinute DurationUnit = "minute"
	UnitHour   DurationUnit = "hour"
	UnitDay    DurationUnit = "day"
	UnitWeek   DurationUnit = "week"
	UnitMonth  DurationUnit = "month"
	UnitYear   DurationUnit = "year"
)

// shortUnits maps the suffixes accepted by ParseDuration.
var shortUnits = map[string]DurationUnit{
	"s": UnitSecond,
	"m": UnitMinute,
	"h": UnitHour,
	"d": UnitDay,
	"w": UnitWeek,
	"M": UnitMonth,
	"y": UnitYear,
}

// Duration is a rotation period such as {30, day}.
type Duration struct {
	Amount int
	Unit   DurationUnit
}

// Validate checks that the amount is positive and the unit is known.
func (d Duration) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Amount, validation.Required, validation.Min(1)),
		validation.Field(&d.Unit, validation.Required, validation.In(
			UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitYear,
		)),
	)
	if err != nil {
		return errors.Wrap(ErrInvalidParams, err.Error())
	}
	return nil
}

// AddTo returns t moved forward by the duration. Months and years follow the calendar.
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case UnitSecond:
		return t.Add(time.Duration(d.Amount) * time.Second)
	case UnitMinute:
		return t.Add(time.Duration(d.Amount) * time.Minute)
	case UnitHour:
		return t.Add(time.Duration(d.Amount) * time.Hour)
	case UnitDay:
		return t.AddDate(0, 0, d.Amount)
	case UnitWeek:
		return t.AddDate(0, 0, 7*d.Amount)
	case UnitMonth:
		return t.AddDate(0, d.Amount, 0)
	case UnitYear:
		return t.AddDate(d.Amount, 0, 0)
	default:
		return t
	}
}

// String renders the duration in the short form accepted by ParseDuration.
func (d Duration) String() string {
	for short, unit := range shortUnits {
		if unit == d.Unit {
			return fmt.Sprintf("%d%s", d.Amount, short)
		}
	}
	return fmt.Sprintf("%d%s", d.Amount, d.Unit)
}

// ParseDuration parses values like "30d", "12h", "15m", "45s", "2w", "6M" or "1y".
func ParseDuration(value string) (Duration, error) {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return Duration{}, errors.Wrap(ErrInvalidParams, fmt.Sprintf("invalid duration %q", value))
	}

	unit, ok := shortUnits[value[len(value)-1:]]
	if !ok {
		return Duration{}, errors.Wrap(ErrInvalidParams, fmt.Sprintf("invalid duration unit in %q", value))
	}

	amount, err := strconv.Atoi(value[:len(value)-1])
	if err != nil {
		return Duration{}, errors.Wrap(ErrInvalidParams, fmt.Sprintf("invalid duration amount in %q", value))
	}

	d := Duration{Amount: amount, Unit: unit}
	if err := d.Validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}
