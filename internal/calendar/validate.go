package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/julian"
)

// Validation failure kinds. Use errors.Is against a *ValidationError.
var (
	ErrInvalidEra       = errors.New(config.ErrInvalidEra)
	ErrInvalidYear      = errors.New(config.ErrInvalidYear)
	ErrInvalidField     = errors.New(config.ErrInvalidField)
	ErrUnsupportedField = errors.New(config.ErrUnsupportedField)
)

// Action records what validation did with an offending field.
type Action int

const (
	// Rejected fields fail strict validation.
	Rejected Action = iota
	// Normalized fields had their overflow carried into a larger field.
	Normalized
	// Clamped fields were replaced by the nearest legal value.
	Clamped
)

func (a Action) String() string {
	switch a {
	case Rejected:
		return "rejected"
	case Normalized:
		return "normalized"
	case Clamped:
		return "clamped"
	}
	return "unknown"
}

// MarshalText renders the action by name in JSON reports.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Issue describes one field that was out of range.
type Issue struct {
	Field  Field  `json:"field"`
	Value  int    `json:"value"`
	Err    error  `json:"-"`
	Action Action `json:"action"`
	// Result is the value the field ended up with; only meaningful when the
	// field was normalized or clamped.
	Result int `json:"result"`
	Min    int `json:"min"`
	Max    int `json:"max"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%v: %s=%d (range %d..%d, %s)", i.Err, i.Field, i.Value, i.Min, i.Max, i.Action)
}

// Report lists every offending field found by one validation pass.
type Report struct {
	Lenient bool    `json:"lenient"`
	Issues  []Issue `json:"issues"`
}

// OK reports whether no field was out of range.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// ValidationError is returned by strict validation. It carries every
// rejected field, not just the first one.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the failure kinds to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		errs = append(errs, issue.Err)
	}
	return errs
}

// Validate checks the fields that take part in resolving fs. Strict mode
// returns a *ValidationError listing every offending field. Lenient mode
// never fails: illegal eras are clamped to the default era, everything else
// is carried into the neighbouring field, and each issue's Result holds the
// value after recomputation.
func Validate(fs *FieldSet, e *Engine, lenient bool) (Report, error) {
	report := Report{Lenient: lenient}
	v := e.variant

	check := func(f Field, value, lo, hi int, err error) {
		if value >= lo && value <= hi {
			return
		}
		report.Issues = append(report.Issues, Issue{Field: f, Value: value, Err: err, Min: lo, Max: hi})
	}
	needsCheck := func(f Field) bool {
		return fs.IsUserSet(f) || (fs.IsSet(f) && resolvesWith(fs, f))
	}

	if fs.IsUserSet(Era) && !legalEra(v, EraID(fs.Get(Era))) {
		report.Issues = append(report.Issues, Issue{
			Field: Era, Value: fs.Get(Era), Err: ErrInvalidEra,
			Min: e.Limit(Era, Minimum), Max: e.Limit(Era, Maximum),
		})
	}

	minYear, maxYear := v.YearLimit(Minimum), v.YearLimit(Maximum)
	eyear := e.ComputeExtendedYear(fs)
	if fs.IsUserSet(ExtendedYear) && fs.Newer(ExtendedYear, Year) == ExtendedYear {
		eraYear, _ := v.ToEraRelativeYear(eyear)
		if eraYear < minYear || eraYear > maxYear {
			lo, hi := extendedYearBounds(v, minYear, maxYear)
			report.Issues = append(report.Issues, Issue{
				Field: ExtendedYear, Value: eyear, Err: ErrInvalidYear,
				Min: lo, Max: hi,
			})
		}
	} else if fs.IsUserSet(Year) {
		check(Year, fs.Get(Year), minYear, maxYear, ErrInvalidYear)
	}

	if needsCheck(Month) {
		check(Month, fs.Get(Month), e.Limit(Month, Minimum), e.Limit(Month, Maximum), ErrInvalidField)
	}
	if needsCheck(DayOfMonth) {
		check(DayOfMonth, fs.Get(DayOfMonth), 1, julian.MonthLength(eyear, fs.GetOr(Month, 0)), ErrInvalidField)
	}
	if needsCheck(DayOfYear) {
		check(DayOfYear, fs.Get(DayOfYear), 1, julian.YearLength(eyear), ErrInvalidField)
	}
	for _, f := range []Field{WeekOfYear, WeekOfMonth, DayOfWeek, HourOfDay, Minute, Second, Millisecond, JulianDay} {
		if needsCheck(f) {
			check(f, fs.Get(f), e.Limit(f, Minimum), e.Limit(f, Maximum), ErrInvalidField)
		}
	}
	if needsCheck(DayOfWeekInMonth) {
		n := fs.Get(DayOfWeekInMonth)
		lo, hi := e.Limit(DayOfWeekInMonth, Minimum), e.Limit(DayOfWeekInMonth, Maximum)
		if n == 0 || n < lo || n > hi {
			report.Issues = append(report.Issues, Issue{Field: DayOfWeekInMonth, Value: n, Err: ErrInvalidField, Min: lo, Max: hi})
		}
	}

	if report.OK() {
		return report, nil
	}

	if !lenient {
		for i := range report.Issues {
			report.Issues[i].Action = Rejected
		}
		return report, &ValidationError{Issues: report.Issues}
	}

	var resolved FieldSet
	jdn, millis := resolve(fs, e)
	e.ComputeFields(jdn, &resolved)
	setTimeFields(&resolved, millis)
	for i := range report.Issues {
		issue := &report.Issues[i]
		issue.Action = Normalized
		if issue.Field == Era {
			issue.Action = Clamped
		}
		issue.Result = resolved.Get(issue.Field)
	}
	return report, nil
}

// extendedYearBounds spans the extended years reachable from any legal era.
func extendedYearBounds(v Variant, minYear, maxYear int) (lo, hi int) {
	for i, era := range v.LegalEras() {
		a, b := v.ToExtendedYear(minYear, era), v.ToExtendedYear(maxYear, era)
		if a > b {
			a, b = b, a
		}
		if i == 0 {
			lo, hi = a, b
			continue
		}
		lo, hi = min(lo, a), max(hi, b)
	}
	return lo, hi
}

// resolvesWith reports whether f belongs to the date pattern that would be
// used to resolve fs. Computed fields only matter when they do.
func resolvesWith(fs *FieldSet, f Field) bool {
	pattern := resolvePattern(fs)
	for _, p := range datePatterns {
		if p.pattern != pattern {
			continue
		}
		for _, pf := range p.fields {
			if pf == f {
				return true
			}
		}
	}
	return false
}

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
	millisPerDay    = 24 * millisPerHour
)

// resolve returns the day and the millisecond of that day described by fs.
// Time-of-day overflow carries into the day.
func resolve(fs *FieldSet, e *Engine) (jdn, millisInDay int) {
	jdn = e.ComputeJulianDay(fs)
	millis := fs.GetOr(HourOfDay, 0)*millisPerHour +
		fs.GetOr(Minute, 0)*millisPerMinute +
		fs.GetOr(Second, 0)*millisPerSecond +
		fs.GetOr(Millisecond, 0)
	return jdn + julian.FloorDiv(millis, millisPerDay), julian.FloorMod(millis, millisPerDay)
}

func setTimeFields(fs *FieldSet, millisInDay int) {
	fs.setInternal(HourOfDay, millisInDay/millisPerHour)
	fs.setInternal(Minute, millisInDay/millisPerMinute%60)
	fs.setInternal(Second, millisInDay/millisPerSecond%60)
	fs.setInternal(Millisecond, millisInDay%millisPerSecond)
}
