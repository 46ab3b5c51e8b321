// Package julian converts between Julian Day Numbers and proleptic Gregorian
// dates.
//
// Years are extended (astronomical) years: year 0 is 1 BC, year -1 is 2 BC.
// Months are 0-based. All functions are pure and never fail; out-of-range
// months and days are normalized arithmetically.
package julian

import "time"

const (
	// rataDieOffset converts a Rata Die day (0001-01-01 == 1) into a JDN.
	rataDieOffset = 1721425

	// EpochDayNumber is the JDN of 1970-01-01.
	EpochDayNumber = 2440588

	// MinYear and MaxYear bound the documented supported range.
	MinYear = -5000000
	MaxYear = 5000000

	daysPer400Years = 146097
	daysPer100Years = 36524
	daysPer4Years   = 1461
	daysPerYear     = 365
)

// Cumulative day counts at the start of each month in a common year.
var monthStart = [13]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

var (
	// MinDayNumber is the JDN of the first day of MinYear.
	MinDayNumber = DateToDayNumber(MinYear, 0, 1)
	// MaxDayNumber is the JDN of the last day of MaxYear.
	MaxDayNumber = DateToDayNumber(MaxYear, 11, 31)
)

// FloorDiv returns the quotient rounded toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// FloorMod returns a modulo b with the sign of b.
func FloorMod(a, b int) int {
	return a - b*FloorDiv(a, b)
}

// IsLeapYear reports whether the extended year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearLength returns 365 or 366.
func YearLength(year int) int {
	if IsLeapYear(year) {
		return daysPerYear + 1
	}
	return daysPerYear
}

// MonthLength returns the number of days of the 0-based month. The month is
// normalized into the year first, so month 12 is January of the next year.
func MonthLength(year, month int) int {
	year += FloorDiv(month, 12)
	month = FloorMod(month, 12)
	n := monthStart[month+1] - monthStart[month]
	if month == 1 && IsLeapYear(year) {
		n++
	}
	return n
}

// DateToDayNumber returns the JDN of the given extended year, 0-based month
// and day of month.
func DateToDayNumber(year, month, dayOfMonth int) int {
	year += FloorDiv(month, 12)
	month = FloorMod(month, 12)

	prev := year - 1
	rd := daysPerYear*prev + FloorDiv(prev, 4) - FloorDiv(prev, 100) + FloorDiv(prev, 400)
	rd += monthStart[month]
	if month > 1 && IsLeapYear(year) {
		rd++
	}
	return rd + dayOfMonth + rataDieOffset
}

// DayNumberToDate is the inverse of DateToDayNumber.
func DayNumberToDate(jdn int) (year, month, dayOfMonth int) {
	year = yearOf(jdn)
	doy := jdn - DateToDayNumber(year, 0, 1)

	leap := IsLeapYear(year)
	for month = 11; month > 0; month-- {
		start := monthStart[month]
		if leap && month > 1 {
			start++
		}
		if doy >= start {
			return year, month, doy - start + 1
		}
	}
	return year, 0, doy + 1
}

// DayOfYear returns the 1-based ordinal day of jdn within its year.
func DayOfYear(jdn int) int {
	return jdn - DateToDayNumber(yearOf(jdn), 0, 1) + 1
}

// DayOfWeek returns 1 for Sunday through 7 for Saturday.
func DayOfWeek(jdn int) int {
	return FloorMod(jdn+1, 7) + 1
}

// FromTime returns the JDN of the wall-clock date of t in its own location.
func FromTime(t time.Time) int {
	y, m, d := t.Date()
	return DateToDayNumber(y, int(m)-1, d)
}

// ToTime returns midnight of jdn in loc. A nil loc means UTC.
func ToTime(jdn int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := DayNumberToDate(jdn)
	return time.Date(y, time.Month(m+1), d, 0, 0, 0, 0, loc)
}

func yearOf(jdn int) int {
	d0 := jdn - rataDieOffset - 1
	n400 := FloorDiv(d0, daysPer400Years)
	d1 := FloorMod(d0, daysPer400Years)
	n100 := d1 / daysPer100Years
	d2 := d1 % daysPer100Years
	n4 := d2 / daysPer4Years
	d3 := d2 % daysPer4Years
	n1 := d3 / daysPerYear

	year := 400*n400 + 100*n100 + 4*n4 + n1
	// Day 366 of a leap cycle stays in the year just counted.
	if n100 != 4 && n1 != 4 {
		year++
	}
	return year
}
