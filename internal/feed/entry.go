package feed

import (
	"time"

	"github.com/tartampluch/go-eracal/internal/calendar"
)

// Kind tells which vCard date an entry comes from.
type Kind string

const (
	KindBirthday    Kind = "birthday"
	KindAnniversary Kind = "anniversary"
)

// Entry is one dated contact, ready for sorting and display.
type Entry struct {
	// UID is a stable hash of the name, date and kind.
	UID string

	Name string
	Kind Kind

	// Date is the parsed vCard date. Its year is a placeholder when
	// YearKnown is false.
	Date      time.Time
	YearKnown bool

	// NextOccurrence is today or the next day the date comes around.
	NextOccurrence time.Time

	// AgeNext is the number of years completed at NextOccurrence. Only
	// meaningful when YearKnown is true.
	AgeNext int

	// EraYear and Era locate NextOccurrence in the feed's calendar variant.
	EraYear int
	Era     calendar.EraID
}
