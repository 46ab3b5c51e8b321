// Package era provides the calendar variants: year and era numbering
// schemes plugged into the shared field engine, plus a registry that can
// load custom variants from TOML definition files.
package era

import (
	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
)

// BE is the only era of the Buddhist calendar.
const BE calendar.EraID = 0

// Single is a variant with exactly one era, offset from the extended year
// by a fixed number of years: eraYear = extendedYear - Offset.
type Single struct {
	ID      string
	Offset  int
	Era     calendar.EraID
	MinYear int
	MaxYear int
}

// Buddhist returns the Thai solar calendar numbering: 1 AD is 544 BE.
func Buddhist() Single {
	return Single{
		ID:      config.CalendarBuddhist,
		Offset:  config.BuddhistEraStart,
		Era:     BE,
		MinYear: 1,
		MaxYear: config.MaxEraYear,
	}
}

func (s Single) Name() string { return s.ID }

// ToExtendedYear ignores era: there is only one.
func (s Single) ToExtendedYear(eraYear int, _ calendar.EraID) int {
	return eraYear + s.Offset
}

func (s Single) ToEraRelativeYear(extendedYear int) (int, calendar.EraID) {
	return extendedYear - s.Offset, s.Era
}

func (s Single) LegalEras() []calendar.EraID {
	return []calendar.EraID{s.Era}
}

func (s Single) YearLimit(kind calendar.LimitKind) int {
	if kind == calendar.Minimum || kind == calendar.GreatestMinimum {
		return s.MinYear
	}
	return s.MaxYear
}
