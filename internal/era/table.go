package era

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
)

// ErrInvalidDefinition reports a variant whose eras cannot form a
// continuous numbering.
var ErrInvalidDefinition = errors.New(config.ErrInvalidDefinition)

// Era identifiers of the built-in multi-era variants.
const (
	BC calendar.EraID = 0
	AD calendar.EraID = 1

	BeforeMinguo calendar.EraID = 0
	Minguo       calendar.EraID = 1
)

// Span is one era of a Table. A forward era numbers Start as its year 1 and
// counts up; a backward era numbers Start as its year 1 and counts down,
// the way BC years do.
type Span struct {
	Era      calendar.EraID `toml:"id"`
	Start    int            `toml:"start"`
	Backward bool           `toml:"backward"`
}

// Table is a variant with several eras. Spans are ordered by Start; only the
// first span may be backward. A forward span covers the extended years from
// its Start up to the next span.
type Table struct {
	ID      string
	Spans   []Span
	Default calendar.EraID
	MinYear int
	MaxYear int
}

// Gregorian returns the proleptic Gregorian calendar with BC and AD eras.
func Gregorian() Table {
	return Table{
		ID:      config.CalendarGregorian,
		Spans:   []Span{{Era: BC, Start: 0, Backward: true}, {Era: AD, Start: 1}},
		Default: AD,
		MinYear: 1,
		MaxYear: config.MaxEraYear,
	}
}

// ROC returns the Republic of China (Minguo) calendar: 1912 AD is Minguo 1.
func ROC() Table {
	return Table{
		ID:      config.CalendarROC,
		Spans:   []Span{{Era: BeforeMinguo, Start: config.ROCEraStart, Backward: true}, {Era: Minguo, Start: config.ROCEraStart + 1}},
		Default: Minguo,
		MinYear: 1,
		MaxYear: config.MaxEraYear,
	}
}

// Validate checks that the spans describe a continuous numbering.
func (t Table) Validate() error {
	if len(t.Spans) == 0 {
		return fmt.Errorf("%w: %s: no eras", ErrInvalidDefinition, t.ID)
	}
	seen := make(map[calendar.EraID]bool, len(t.Spans))
	for i, s := range t.Spans {
		if seen[s.Era] {
			return fmt.Errorf("%w: %s: era %d declared twice", ErrInvalidDefinition, t.ID, s.Era)
		}
		seen[s.Era] = true
		if s.Backward && i != 0 {
			return fmt.Errorf("%w: %s: only the first era may count backward", ErrInvalidDefinition, t.ID)
		}
		if i > 0 && s.Start <= t.Spans[i-1].Start {
			return fmt.Errorf("%w: %s: eras must start in increasing order", ErrInvalidDefinition, t.ID)
		}
	}
	if !seen[t.Default] {
		return fmt.Errorf("%w: %s: default era %d is not declared", ErrInvalidDefinition, t.ID, t.Default)
	}
	if t.MinYear > t.MaxYear {
		return fmt.Errorf("%w: %s: min_year %d > max_year %d", ErrInvalidDefinition, t.ID, t.MinYear, t.MaxYear)
	}
	return nil
}

func (t Table) Name() string { return t.ID }

// ToExtendedYear converts a year of the given era. An unknown era is read
// as the default era.
func (t Table) ToExtendedYear(eraYear int, era calendar.EraID) int {
	s := t.span(era)
	if s.Backward {
		return s.Start - eraYear + 1
	}
	return s.Start + eraYear - 1
}

// ToEraRelativeYear finds the era covering extendedYear. Years before the
// first forward era that no backward era covers get zero or negative years
// of that forward era.
func (t Table) ToEraRelativeYear(extendedYear int) (int, calendar.EraID) {
	first := t.Spans[0]
	forward := t.Spans
	if first.Backward {
		if extendedYear <= first.Start || len(t.Spans) == 1 {
			return first.Start - extendedYear + 1, first.Era
		}
		forward = t.Spans[1:]
	}
	s := forward[0]
	for _, f := range forward[1:] {
		if extendedYear >= f.Start {
			s = f
		}
	}
	return extendedYear - s.Start + 1, s.Era
}

// LegalEras lists the default era first, then the others in span order.
func (t Table) LegalEras() []calendar.EraID {
	eras := []calendar.EraID{t.Default}
	for _, s := range t.Spans {
		if s.Era != t.Default {
			eras = append(eras, s.Era)
		}
	}
	return eras
}

func (t Table) YearLimit(kind calendar.LimitKind) int {
	if kind == calendar.Minimum || kind == calendar.GreatestMinimum {
		return t.MinYear
	}
	return t.MaxYear
}

func (t Table) span(era calendar.EraID) Span {
	if i := slices.IndexFunc(t.Spans, func(s Span) bool { return s.Era == era }); i >= 0 {
		return t.Spans[i]
	}
	i := slices.IndexFunc(t.Spans, func(s Span) bool { return s.Era == t.Default })
	return t.Spans[i]
}
