// Package calendar computes civil calendar fields from Julian Day Numbers and
// back, for any calendar variant that shares the proleptic Gregorian day
// arithmetic and only differs in how years and eras are numbered.
//
// The era-relative numbering is supplied by a Variant. Everything else
// (field resolution, week numbering, validation) is shared.
package calendar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/julian"
)

type options struct {
	lenient        bool
	clock          Clock
	firstDayOfWeek int
	minimalDays    int
	logger         *slog.Logger
}

// Option configures a Calendar.
type Option func(*options)

// WithLenient selects lenient (true) or strict (false) validation.
// Calendars are lenient by default.
func WithLenient(lenient bool) Option {
	return func(o *options) { o.lenient = lenient }
}

// WithClock replaces the clock used by New and SetToNow.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithFirstDayOfWeek sets the day weeks start on, 1 (Sunday) to 7.
func WithFirstDayOfWeek(day int) Option {
	return func(o *options) { o.firstDayOfWeek = day }
}

// WithMinimalDaysInFirstWeek sets how many days week 1 needs, 1 to 7.
func WithMinimalDaysInFirstWeek(days int) Option {
	return func(o *options) { o.minimalDays = days }
}

// WithLogger sets the logger used to report validation issues.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Calendar is one moment expressed in a calendar variant. Field reads are
// computed lazily and cached until the next mutation.
//
// A Calendar is not safe for concurrent use; callers sharing one across
// goroutines must synchronize access themselves.
type Calendar struct {
	engine  *Engine
	clock   Clock
	logger  *slog.Logger
	lenient bool

	fields FieldSet
	jdn    int
	millis int

	timeValid   bool
	fieldsValid bool
	lastReport  Report
}

func newCalendar(v Variant, opts []Option) *Calendar {
	o := options{
		lenient:        config.DefaultLenient,
		clock:          RealClock{},
		firstDayOfWeek: config.DefaultFirstDayOfWeek,
		minimalDays:    config.DefaultMinimalDays,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Calendar{
		engine:  NewEngine(v, o.firstDayOfWeek, o.minimalDays),
		clock:   o.clock,
		logger:  o.logger.With(config.LogKeyComponent, config.CompCalendar),
		lenient: o.lenient,
	}
}

// New returns a calendar set to the current moment of its clock.
func New(v Variant, opts ...Option) *Calendar {
	c := newCalendar(v, opts)
	c.SetToNow()
	return c
}

// NewAt returns a calendar set to midnight of jdn.
func NewAt(v Variant, jdn int, opts ...Option) *Calendar {
	c := newCalendar(v, opts)
	c.setInstant(jdn, 0)
	return c
}

// Variant returns the calendar's era mapping.
func (c *Calendar) Variant() Variant { return c.engine.variant }

// Engine returns the field engine backing the calendar.
func (c *Calendar) Engine() *Engine { return c.engine }

// Lenient reports whether out-of-range fields are normalized.
func (c *Calendar) Lenient() bool { return c.lenient }

// SetLenient switches between lenient and strict validation.
func (c *Calendar) SetLenient(lenient bool) { c.lenient = lenient }

// LegalEras returns the era values the variant accepts.
func (c *Calendar) LegalEras() []EraID { return c.engine.variant.LegalEras() }

// Set assigns a field. The new value takes precedence over every earlier
// assignment it conflicts with.
func (c *Calendar) Set(f Field, value int) {
	if c.timeValid && !c.fieldsValid {
		c.computeFields()
	}
	c.fields.Set(f, value)
	c.timeValid = false
	c.fieldsValid = false
}

// SetDate sets the era-relative year, 0-based month and day of month.
func (c *Calendar) SetDate(year, month, dayOfMonth int) {
	c.Set(Year, year)
	c.Set(Month, month)
	c.Set(DayOfMonth, dayOfMonth)
}

// Clear unsets every field. An empty calendar resolves to January 1st of
// era-relative year 1 in the default era.
func (c *Calendar) Clear() {
	c.fields.Clear()
	c.timeValid = false
	c.fieldsValid = false
}

// ClearField unsets a single field.
func (c *Calendar) ClearField(f Field) {
	if c.timeValid && !c.fieldsValid {
		c.computeFields()
	}
	c.fields.ClearField(f)
	c.timeValid = false
	c.fieldsValid = false
}

// IsSet reports whether f currently holds a value.
func (c *Calendar) IsSet(f Field) bool {
	return c.fieldsValid || c.fields.IsSet(f)
}

// Get returns the value of f, recomputing the fields if needed. In strict
// mode it fails with a *ValidationError when the fields set since the last
// computation are out of range.
func (c *Calendar) Get(f Field) (int, error) {
	if !f.valid() {
		return 0, fmt.Errorf("%s: %d", config.ErrUnknownField, int(f))
	}
	if err := c.complete(); err != nil {
		return 0, err
	}
	return c.fields.Get(f), nil
}

// Fields returns every field value.
func (c *Calendar) Fields() (map[Field]int, error) {
	if err := c.complete(); err != nil {
		return nil, err
	}
	return c.fields.Snapshot(), nil
}

// JulianDay returns the day the calendar is set to.
func (c *Calendar) JulianDay() (int, error) {
	if err := c.complete(); err != nil {
		return 0, err
	}
	return c.jdn, nil
}

// SetJulianDay moves the calendar to midnight of jdn.
func (c *Calendar) SetJulianDay(jdn int) {
	c.setInstant(jdn, 0)
}

// Time returns the calendar's moment as a wall-clock time in loc (UTC when
// nil). No zone conversion happens: the fields are taken as local time.
func (c *Calendar) Time(loc *time.Location) (time.Time, error) {
	if err := c.complete(); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := julian.DayNumberToDate(c.jdn)
	return time.Date(y, time.Month(m+1), d,
		c.millis/millisPerHour, c.millis/millisPerMinute%60, c.millis/millisPerSecond%60,
		c.millis%millisPerSecond*int(time.Millisecond), loc), nil
}

// SetTime sets the calendar to the wall-clock date and time of t.
func (c *Calendar) SetTime(t time.Time) {
	millis := t.Hour()*millisPerHour + t.Minute()*millisPerMinute + t.Second()*millisPerSecond + t.Nanosecond()/int(time.Millisecond)
	c.setInstant(julian.FromTime(t), millis)
}

// SetToNow sets the calendar to the clock's current moment.
func (c *Calendar) SetToNow() {
	c.SetTime(c.clock.Now())
}

// Validate checks the fields set since the last computation without
// changing the calendar.
func (c *Calendar) Validate() (Report, error) {
	return Validate(&c.fields, c.engine, c.lenient)
}

// LastReport returns the report of the most recent recomputation.
func (c *Calendar) LastReport() Report { return c.lastReport }

// Minimum returns the smallest value f can take.
func (c *Calendar) Minimum(f Field) int { return c.engine.Limit(f, Minimum) }

// GreatestMinimum returns the largest of the per-period minimums of f.
func (c *Calendar) GreatestMinimum(f Field) int { return c.engine.Limit(f, GreatestMinimum) }

// LeastMaximum returns the smallest of the per-period maximums of f.
func (c *Calendar) LeastMaximum(f Field) int { return c.engine.Limit(f, LeastMaximum) }

// Maximum returns the largest value f can take.
func (c *Calendar) Maximum(f Field) int { return c.engine.Limit(f, Maximum) }

// ActualMaximum returns the largest value f can take given the current
// year and month.
func (c *Calendar) ActualMaximum(f Field) (int, error) {
	if err := c.complete(); err != nil {
		return 0, err
	}
	eyear, month := c.fields.Get(ExtendedYear), c.fields.Get(Month)
	switch f {
	case DayOfMonth:
		return julian.MonthLength(eyear, month), nil
	case DayOfYear:
		return julian.YearLength(eyear), nil
	case DayOfWeekInMonth:
		return (julian.MonthLength(eyear, month)-1)/7 + 1, nil
	case WeekOfMonth:
		end := julian.MonthLength(eyear, month)
		return c.engine.weekNumber(end, end, julian.DayOfWeek(c.engine.ComputeMonthStart(eyear, month)+end-1)), nil
	case WeekOfYear:
		yearLen := julian.YearLength(eyear)
		start := julian.DateToDayNumber(eyear, 0, 1)
		woy := 0
		for doy := yearLen - 6; doy <= yearLen; doy++ {
			woy = max(woy, c.engine.weekOfYear(eyear, doy, julian.DayOfWeek(start+doy-1)))
		}
		return woy, nil
	}
	return c.engine.Limit(f, Maximum), nil
}

// Add moves the calendar by amount units of f. Year and month arithmetic
// keeps the day of month, pinned to the length of the target month.
func (c *Calendar) Add(f Field, amount int) error {
	if amount == 0 {
		return nil
	}
	if err := c.complete(); err != nil {
		return err
	}

	v := c.engine.variant
	eyear, month, dom := c.fields.Get(ExtendedYear), c.fields.Get(Month), c.fields.Get(DayOfMonth)
	jdn, millis := c.jdn, c.millis

	switch f {
	case Year, ExtendedYear:
		// Positive amounts move forward in time in every era.
		eyear += amount
		jdn = pinnedDay(eyear, month, dom)
	case Month:
		months := eyear*12 + month + amount
		eyear, month = julian.FloorDiv(months, 12), julian.FloorMod(months, 12)
		jdn = pinnedDay(eyear, month, dom)
	case DayOfMonth, DayOfYear, DayOfWeek, JulianDay:
		jdn += amount
	case WeekOfYear, WeekOfMonth, DayOfWeekInMonth:
		jdn += 7 * amount
	case HourOfDay, Minute, Second, Millisecond:
		total := millis + amount*millisPer(f)
		jdn += julian.FloorDiv(total, millisPerDay)
		millis = julian.FloorMod(total, millisPerDay)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedField, f)
	}

	if !c.lenient {
		resultYear, _ := v.ToEraRelativeYear(yearOfDay(jdn))
		lo, hi := v.YearLimit(Minimum), v.YearLimit(Maximum)
		if resultYear < lo || resultYear > hi {
			return &ValidationError{Issues: []Issue{{
				Field: Year, Value: resultYear, Err: ErrInvalidYear, Action: Rejected, Min: lo, Max: hi,
			}}}
		}
	}

	c.setInstant(jdn, millis)
	return nil
}

func millisPer(f Field) int {
	switch f {
	case HourOfDay:
		return millisPerHour
	case Minute:
		return millisPerMinute
	case Second:
		return millisPerSecond
	}
	return 1
}

func pinnedDay(eyear, month, dom int) int {
	return julian.DateToDayNumber(eyear, month, min(dom, julian.MonthLength(eyear, month)))
}

func yearOfDay(jdn int) int {
	y, _, _ := julian.DayNumberToDate(jdn)
	return y
}

func (c *Calendar) setInstant(jdn, millis int) {
	c.fields.Clear()
	c.jdn, c.millis = jdn, millis
	c.timeValid = true
	c.fieldsValid = false
}

func (c *Calendar) complete() error {
	if !c.timeValid {
		if err := c.computeTime(); err != nil {
			return err
		}
	}
	if !c.fieldsValid {
		c.computeFields()
	}
	return nil
}

func (c *Calendar) computeTime() error {
	report, err := Validate(&c.fields, c.engine, c.lenient)
	c.lastReport = report
	if err != nil {
		c.logger.Debug(config.MsgFieldsRejected,
			config.LogKeyCalendar, c.engine.variant.Name(),
			config.LogKeyIssues, len(report.Issues),
			config.LogKeyError, err,
		)
		return err
	}
	if !report.OK() {
		c.logger.Debug(config.MsgFieldsIssues,
			config.LogKeyCalendar, c.engine.variant.Name(),
			config.LogKeyLenient, c.lenient,
			config.LogKeyIssues, len(report.Issues),
		)
	}
	c.jdn, c.millis = resolve(&c.fields, c.engine)
	c.timeValid = true
	return nil
}

func (c *Calendar) computeFields() {
	c.engine.ComputeFields(c.jdn, &c.fields)
	setTimeFields(&c.fields, c.millis)
	c.fieldsValid = true
}
