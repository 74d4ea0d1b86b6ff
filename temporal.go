package flatty

import (
	"fmt"
	"reflect"
	"time"
)

//Canonical temporal layouts; fractions are fixed six digit microseconds to
//keep flattened output stable across backends.
const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02T15:04:05.000000"
	TimeOfDayLayout = "15:04:05.000000"
)

type (
	//Date represents a calendar date without time of day
	Date time.Time

	//TimeOfDay represents a wall clock time without a date
	TimeOfDay time.Time
)

var (
	dateType      = reflect.TypeOf(Date{})
	timeOfDayType = reflect.TypeOf(TimeOfDay{})
)

//DateOf returns a date for supplied year, month and day
func DateOf(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

//Time returns underlying time value
func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

//TimeOfDayOf returns a time of day for supplied clock fields
func TimeOfDayOf(hour, min, sec, microsecond int) TimeOfDay {
	return TimeOfDay(time.Date(0, time.January, 1, hour, min, sec, microsecond*int(time.Microsecond), time.UTC))
}

//Time returns underlying time value
func (t TimeOfDay) Time() time.Time {
	return time.Time(t)
}

func (t TimeOfDay) String() string {
	return time.Time(t).Format(TimeOfDayLayout)
}

type dateConverter struct{}

func (c *dateConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	return checkAssignable(declared, value)
}

func (c *dateConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	switch actual := value.(type) {
	case Date:
		return actual.String(), nil
	case *Date:
		return actual.String(), nil
	}
	return nil, NewTypeMismatch(value, declared)
}

func (c *dateConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	parsed, err := parseTemporal(tree, DateLayout)
	if err != nil {
		return nil, err
	}
	if target, ok := existing.(*Date); ok && target != nil {
		*target = Date(parsed)
		return target, nil
	}
	return Date(parsed), nil
}

type dateTimeConverter struct{}

func (c *dateTimeConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	return checkAssignable(declared, value)
}

func (c *dateTimeConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	switch actual := value.(type) {
	case time.Time:
		return actual.Format(DateTimeLayout), nil
	case *time.Time:
		return actual.Format(DateTimeLayout), nil
	}
	return nil, NewTypeMismatch(value, declared)
}

func (c *dateTimeConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	parsed, err := parseTemporal(tree, DateTimeLayout)
	if err != nil {
		return nil, err
	}
	if target, ok := existing.(*time.Time); ok && target != nil {
		*target = parsed
		return target, nil
	}
	return parsed, nil
}

type timeOfDayConverter struct{}

func (c *timeOfDayConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	return checkAssignable(declared, value)
}

func (c *timeOfDayConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	switch actual := value.(type) {
	case TimeOfDay:
		return actual.String(), nil
	case *TimeOfDay:
		return actual.String(), nil
	}
	return nil, NewTypeMismatch(value, declared)
}

func (c *timeOfDayConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	parsed, err := parseTemporal(tree, TimeOfDayLayout)
	if err != nil {
		return nil, err
	}
	if target, ok := existing.(*TimeOfDay); ok && target != nil {
		*target = TimeOfDay(parsed)
		return target, nil
	}
	return TimeOfDay(parsed), nil
}

func parseTemporal(tree interface{}, layout string) (time.Time, error) {
	literal, ok := tree.(string)
	if !ok {
		literal = fmt.Sprint(tree)
	}
	parsed, err := time.Parse(layout, literal)
	if err != nil {
		return time.Time{}, &FormatError{Literal: literal, Layout: layout}
	}
	return parsed, nil
}
