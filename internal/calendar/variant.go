package calendar

// EraID identifies an era within a calendar variant.
type EraID int

// LimitKind selects one of the four limits a field can be asked for.
type LimitKind int

const (
	Minimum LimitKind = iota
	GreatestMinimum
	LeastMaximum
	Maximum
)

func (k LimitKind) String() string {
	switch k {
	case Minimum:
		return "minimum"
	case GreatestMinimum:
		return "greatest_minimum"
	case LeastMaximum:
		return "least_maximum"
	case Maximum:
		return "maximum"
	}
	return "unknown"
}

// Variant maps a calendar's era-relative year numbering onto the continuous
// extended year used by the day arithmetic. It is the only thing a new
// calendar needs to supply; implementations must be immutable.
type Variant interface {
	// Name is the registry key of the variant, e.g. "buddhist".
	Name() string

	// ToExtendedYear converts an era-relative year. Single-era variants
	// ignore era.
	ToExtendedYear(eraYear int, era EraID) int

	// ToEraRelativeYear is the inverse of ToExtendedYear.
	ToEraRelativeYear(extendedYear int) (int, EraID)

	// LegalEras lists the accepted era values. The first one is the default
	// era, used when a year is set without an era.
	LegalEras() []EraID

	// YearLimit returns the era-relative year bound of the given kind.
	YearLimit(kind LimitKind) int
}

func singleEra(v Variant) bool {
	return len(v.LegalEras()) == 1
}

func defaultEra(v Variant) EraID {
	return v.LegalEras()[0]
}

func legalEra(v Variant, era EraID) bool {
	for _, e := range v.LegalEras() {
		if e == era {
			return true
		}
	}
	return false
}
