package calendar

import "github.com/tartampluch/go-eracal/internal/julian"

// Generic limits indexed by LimitKind: minimum, greatest minimum, least
// maximum, maximum. Era and Year are answered by the variant instead.
var genericLimits = [fieldCount][4]int{
	WeekOfYear:       {1, 1, 52, 53},
	WeekOfMonth:      {0, 0, 4, 6},
	Month:            {0, 0, 11, 11},
	DayOfMonth:       {1, 1, 28, 31},
	DayOfYear:        {1, 1, 365, 366},
	DayOfWeek:        {1, 1, 7, 7},
	DayOfWeekInMonth: {-1, -1, 4, 5},
	ExtendedYear:     {-julian.MaxYear, -julian.MaxYear, julian.MaxYear, julian.MaxYear},
	HourOfDay:        {0, 0, 23, 23},
	Minute:           {0, 0, 59, 59},
	Second:           {0, 0, 59, 59},
	Millisecond:      {0, 0, 999, 999},
}

// Limit returns the limit of the given kind for f.
func (e *Engine) Limit(f Field, kind LimitKind) int {
	switch f {
	case Era:
		eras := e.variant.LegalEras()
		lo, hi := eras[0], eras[0]
		for _, era := range eras[1:] {
			lo, hi = min(lo, era), max(hi, era)
		}
		if kind == Minimum || kind == GreatestMinimum {
			return int(lo)
		}
		return int(hi)
	case Year:
		return e.variant.YearLimit(kind)
	case JulianDay:
		if kind == Minimum || kind == GreatestMinimum {
			return julian.MinDayNumber
		}
		return julian.MaxDayNumber
	}
	return genericLimits[f][kind]
}
