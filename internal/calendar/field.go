package calendar

import (
	"fmt"

	"github.com/tartampluch/go-eracal/internal/config"
)

// Field identifies one calendar field.
type Field int

// Calendar fields. Month is 0-based; DayOfWeek runs from 1 (Sunday) to 7.
const (
	Era Field = iota
	Year
	Month
	WeekOfYear
	WeekOfMonth
	DayOfMonth
	DayOfYear
	DayOfWeek
	DayOfWeekInMonth
	ExtendedYear
	JulianDay
	HourOfDay
	Minute
	Second
	Millisecond

	fieldCount
)

var fieldNames = [fieldCount]string{
	Era:              "era",
	Year:             "year",
	Month:            "month",
	WeekOfYear:       "week_of_year",
	WeekOfMonth:      "week_of_month",
	DayOfMonth:       "day_of_month",
	DayOfYear:        "day_of_year",
	DayOfWeek:        "day_of_week",
	DayOfWeekInMonth: "day_of_week_in_month",
	ExtendedYear:     "extended_year",
	JulianDay:        "julian_day",
	HourOfDay:        "hour_of_day",
	Minute:           "minute",
	Second:           "second",
	Millisecond:      "millisecond",
}

// Fields returns every field in declaration order.
func Fields() []Field {
	all := make([]Field, fieldCount)
	for i := range all {
		all[i] = Field(i)
	}
	return all
}

func (f Field) valid() bool {
	return f >= 0 && f < fieldCount
}

func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField returns the field with the given snake_case name.
func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%s: %q", config.ErrUnknownField, name)
}

// MarshalText lets fields be used as JSON object keys.
func (f Field) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%s: %d", config.ErrUnknownField, int(f))
	}
	return []byte(fieldNames[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Stamps order field assignments. A caller-set field always carries a stamp
// of at least minimumUserStamp, so it is newer than any computed field.
const (
	stampUnset       = 0
	stampInternal    = 1
	minimumUserStamp = 2
)

// FieldSet holds field values together with the order in which they were set.
// The zero value is an empty set ready to use.
type FieldSet struct {
	values    [fieldCount]int
	stamps    [fieldCount]int
	nextStamp int
}

// Set assigns a caller value and marks it as the most recently set field.
func (fs *FieldSet) Set(f Field, value int) {
	if fs.nextStamp < minimumUserStamp {
		fs.nextStamp = minimumUserStamp
	}
	fs.values[f] = value
	fs.stamps[f] = fs.nextStamp
	fs.nextStamp++
}

// setInternal records a computed value. Computed values lose every
// precedence comparison against caller values.
func (fs *FieldSet) setInternal(f Field, value int) {
	fs.values[f] = value
	fs.stamps[f] = stampInternal
}

// Get returns the raw value of f, zero when unset.
func (fs *FieldSet) Get(f Field) int {
	return fs.values[f]
}

// GetOr returns the value of f, or def when f is unset.
func (fs *FieldSet) GetOr(f Field, def int) int {
	if fs.stamps[f] == stampUnset {
		return def
	}
	return fs.values[f]
}

// IsSet reports whether f holds a value, computed or caller-supplied.
func (fs *FieldSet) IsSet(f Field) bool {
	return fs.stamps[f] != stampUnset
}

// IsUserSet reports whether f was set by the caller since the last computation.
func (fs *FieldSet) IsUserSet(f Field) bool {
	return fs.stamps[f] >= minimumUserStamp
}

// Stamp returns the set-sequence number of f.
func (fs *FieldSet) Stamp(f Field) int {
	return fs.stamps[f]
}

// Newer returns alternate when it was set more recently than def, def otherwise.
func (fs *FieldSet) Newer(def, alternate Field) Field {
	if fs.stamps[alternate] > fs.stamps[def] {
		return alternate
	}
	return def
}

// Clear unsets every field.
func (fs *FieldSet) Clear() {
	*fs = FieldSet{}
}

// ClearField unsets a single field.
func (fs *FieldSet) ClearField(f Field) {
	fs.values[f] = 0
	fs.stamps[f] = stampUnset
}

// Snapshot copies every set field into a map.
func (fs *FieldSet) Snapshot() map[Field]int {
	out := make(map[Field]int, fieldCount)
	for i := Field(0); i < fieldCount; i++ {
		if fs.IsSet(i) {
			out[i] = fs.values[i]
		}
	}
	return out
}
