package feed

import (
	"time"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/julian"
)

// occurrence is the day a recurring date falls on in a given year.
type occurrence struct {
	jdn     int
	year    int // extended year
	eraYear int
	era     calendar.EraID
}

// occurrenceIn resolves the month and day of date in extended year y. days
// must be lenient so that February 29th rolls over to March 1st in common
// years.
func occurrenceIn(days *calendar.Calendar, y int, date time.Time) (occurrence, error) {
	days.Clear()
	days.Set(calendar.ExtendedYear, y)
	days.Set(calendar.Month, int(date.Month())-1)
	days.Set(calendar.DayOfMonth, date.Day())

	jdn, err := days.JulianDay()
	if err != nil {
		return occurrence{}, err
	}
	fields, err := days.Fields()
	if err != nil {
		return occurrence{}, err
	}
	return occurrence{
		jdn:     jdn,
		year:    fields[calendar.ExtendedYear],
		eraYear: fields[calendar.Year],
		era:     calendar.EraID(fields[calendar.Era]),
	}, nil
}

// nextOccurrence returns the first occurrence of date on or after today.
func nextOccurrence(days *calendar.Calendar, today int, date time.Time) (occurrence, error) {
	y, _, _ := julian.DayNumberToDate(today)
	occ, err := occurrenceIn(days, y, date)
	if err != nil || occ.jdn >= today {
		return occ, err
	}
	return occurrenceIn(days, y+1, date)
}
