package calendar

import (
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/julian"
)

// Engine derives calendar fields from a Julian Day Number and back. It holds
// no mutable state, so one Engine may serve any number of field sets.
type Engine struct {
	variant        Variant
	firstDayOfWeek int
	minimalDays    int
}

// NewEngine returns an engine for v. Out-of-range week settings fall back to
// Sunday and one minimal day.
func NewEngine(v Variant, firstDayOfWeek, minimalDaysInFirstWeek int) *Engine {
	if firstDayOfWeek < 1 || firstDayOfWeek > 7 {
		firstDayOfWeek = config.DefaultFirstDayOfWeek
	}
	if minimalDaysInFirstWeek < 1 || minimalDaysInFirstWeek > 7 {
		minimalDaysInFirstWeek = config.DefaultMinimalDays
	}
	return &Engine{
		variant:        v,
		firstDayOfWeek: firstDayOfWeek,
		minimalDays:    minimalDaysInFirstWeek,
	}
}

// Variant returns the era mapping the engine was built with.
func (e *Engine) Variant() Variant { return e.variant }

// FirstDayOfWeek returns the day (1 = Sunday) weeks start on.
func (e *Engine) FirstDayOfWeek() int { return e.firstDayOfWeek }

// MinimalDaysInFirstWeek returns how many days of a year week 1 needs.
func (e *Engine) MinimalDaysInFirstWeek() int { return e.minimalDays }

// ComputeExtendedYear resolves the extended year of fs. When both YEAR and
// EXTENDED_YEAR are set the newer one wins; YEAR goes through the variant.
func (e *Engine) ComputeExtendedYear(fs *FieldSet) int {
	if fs.IsSet(ExtendedYear) && fs.Newer(ExtendedYear, Year) == ExtendedYear {
		return fs.Get(ExtendedYear)
	}
	return e.variant.ToExtendedYear(fs.GetOr(Year, config.DefaultEraYear), e.resolveEra(fs))
}

// resolveEra picks the era used to interpret YEAR. The ERA field only matters
// for multi-era variants; an illegal value falls back to the default era.
func (e *Engine) resolveEra(fs *FieldSet) EraID {
	if singleEra(e.variant) || !fs.IsSet(Era) {
		return defaultEra(e.variant)
	}
	era := EraID(fs.Get(Era))
	if !legalEra(e.variant, era) {
		return defaultEra(e.variant)
	}
	return era
}

// ComputeMonthStart returns the JDN of the first day of month in
// extendedYear. The month may lie outside 0..11.
func (e *Engine) ComputeMonthStart(extendedYear, month int) int {
	return julian.DateToDayNumber(extendedYear, month, 1)
}

type datePattern int

const (
	patternMonthDay datePattern = iota
	patternWeekOfYear
	patternWeekOfMonth
	patternDayOfWeekInMonth
	patternDayOfYear
	patternJulianDay
)

// Candidate field combinations for the day within the year, in tie-break order.
var datePatterns = []struct {
	pattern datePattern
	fields  []Field
}{
	{patternMonthDay, []Field{Month, DayOfMonth}},
	{patternWeekOfYear, []Field{WeekOfYear, DayOfWeek}},
	{patternWeekOfMonth, []Field{Month, WeekOfMonth, DayOfWeek}},
	{patternDayOfWeekInMonth, []Field{Month, DayOfWeekInMonth, DayOfWeek}},
	{patternDayOfYear, []Field{DayOfYear}},
	{patternJulianDay, []Field{JulianDay}},
}

// resolvePattern returns the complete combination holding the most recently
// set field. A combination with an unset field never wins.
func resolvePattern(fs *FieldSet) datePattern {
	best, bestStamp := patternMonthDay, stampUnset
patterns:
	for _, p := range datePatterns {
		stamp := stampUnset
		for _, f := range p.fields {
			if fs.Stamp(f) == stampUnset {
				continue patterns
			}
			stamp = max(stamp, fs.Stamp(f))
		}
		if stamp > bestStamp {
			best, bestStamp = p.pattern, stamp
		}
	}
	return best
}

// ComputeJulianDay resolves fs into a JDN. Values outside their normal range
// carry into the neighbouring field; rejecting them is Validate's job.
func (e *Engine) ComputeJulianDay(fs *FieldSet) int {
	pattern := resolvePattern(fs)
	if pattern == patternJulianDay {
		return fs.Get(JulianDay)
	}

	eyear := e.ComputeExtendedYear(fs)
	switch pattern {
	case patternDayOfYear:
		return julian.DateToDayNumber(eyear, 0, 1) + fs.GetOr(DayOfYear, 1) - 1

	case patternWeekOfYear:
		return e.weekStart(julian.DateToDayNumber(eyear, 0, 1), fs.GetOr(WeekOfYear, 1), e.dayOfWeek(fs))

	case patternWeekOfMonth:
		start := e.ComputeMonthStart(eyear, fs.GetOr(Month, 0))
		return e.weekStart(start, fs.GetOr(WeekOfMonth, 1), e.dayOfWeek(fs))

	case patternDayOfWeekInMonth:
		return e.dayOfWeekInMonth(eyear, fs.GetOr(Month, 0), fs.GetOr(DayOfWeekInMonth, 1), e.dayOfWeek(fs))
	}

	return e.ComputeMonthStart(eyear, fs.GetOr(Month, 0)) + fs.GetOr(DayOfMonth, 1) - 1
}

func (e *Engine) dayOfWeek(fs *FieldSet) int {
	return fs.GetOr(DayOfWeek, e.firstDayOfWeek)
}

// weekStart returns the JDN of dow in week number week of the period
// beginning at periodStart.
func (e *Engine) weekStart(periodStart, week, dow int) int {
	first := julian.FloorMod(julian.DayOfWeek(periodStart)-e.firstDayOfWeek, 7)
	date := 1 - first
	if 7-first < e.minimalDays {
		date += 7
	}
	date += 7*(week-1) + julian.FloorMod(dow-e.firstDayOfWeek, 7)
	return periodStart - 1 + date
}

// dayOfWeekInMonth resolves "the n-th dow of the month". Negative n counts
// from the end of the month; 0 is the week before the first occurrence.
func (e *Engine) dayOfWeekInMonth(eyear, month, n, dow int) int {
	if n >= 0 {
		start := e.ComputeMonthStart(eyear, month)
		first := start + julian.FloorMod(dow-julian.DayOfWeek(start), 7)
		return first + 7*(n-1)
	}
	end := e.ComputeMonthStart(eyear, month+1) - 1
	last := end - julian.FloorMod(julian.DayOfWeek(end)-dow, 7)
	return last + 7*(n+1)
}

// ComputeFields writes every date field of jdn into fs. ERA, YEAR and
// EXTENDED_YEAR are derived together so they always describe the same year.
func (e *Engine) ComputeFields(jdn int, fs *FieldSet) {
	eyear, month, dom := julian.DayNumberToDate(jdn)
	eraYear, era := e.variant.ToEraRelativeYear(eyear)
	doy := jdn - julian.DateToDayNumber(eyear, 0, 1) + 1
	dow := julian.DayOfWeek(jdn)

	fs.setInternal(Era, int(era))
	fs.setInternal(Year, eraYear)
	fs.setInternal(ExtendedYear, eyear)
	fs.setInternal(Month, month)
	fs.setInternal(DayOfMonth, dom)
	fs.setInternal(DayOfYear, doy)
	fs.setInternal(DayOfWeek, dow)
	fs.setInternal(DayOfWeekInMonth, (dom-1)/7+1)
	fs.setInternal(WeekOfYear, e.weekOfYear(eyear, doy, dow))
	fs.setInternal(WeekOfMonth, e.weekNumber(dom, dom, dow))
	fs.setInternal(JulianDay, jdn)
}

// weekNumber returns the week of desiredDay within a period, given that
// dayOfPeriod of that period falls on dayOfWeek.
func (e *Engine) weekNumber(desiredDay, dayOfPeriod, dayOfWeek int) int {
	periodStartDow := julian.FloorMod(dayOfWeek-e.firstDayOfWeek-dayOfPeriod+1, 7)
	week := (desiredDay + periodStartDow - 1) / 7
	if 7-periodStartDow >= e.minimalDays {
		week++
	}
	return week
}

// weekOfYear applies the year-boundary rules: early January days may belong
// to the last week of the previous year, late December days to week 1.
func (e *Engine) weekOfYear(eyear, doy, dow int) int {
	relDow := julian.FloorMod(dow-e.firstDayOfWeek, 7)
	relDowJan1 := julian.FloorMod(dow-doy+1-e.firstDayOfWeek, 7)

	woy := (doy - 1 + relDowJan1) / 7
	if 7-relDowJan1 >= e.minimalDays {
		woy++
	}

	if woy == 0 {
		prevDoy := doy + julian.YearLength(eyear-1)
		return e.weekNumber(prevDoy, prevDoy, dow)
	}

	lastDoy := julian.YearLength(eyear)
	if doy >= lastDoy-5 {
		lastRelDow := julian.FloorMod(relDow+lastDoy-doy, 7)
		if 6-lastRelDow >= e.minimalDays && doy+7-relDow > lastDoy {
			woy = 1
		}
	}
	return woy
}
