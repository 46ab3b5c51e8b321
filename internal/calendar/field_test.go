package calendar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSet_Stamps(t *testing.T) {
	var fs FieldSet

	assert.False(t, fs.IsSet(Year))
	assert.Equal(t, 7, fs.GetOr(Year, 7))

	fs.setInternal(Year, 2568)
	assert.True(t, fs.IsSet(Year))
	assert.False(t, fs.IsUserSet(Year))
	assert.Equal(t, stampInternal, fs.Stamp(Year))

	fs.Set(ExtendedYear, 2000)
	assert.True(t, fs.IsUserSet(ExtendedYear))
	assert.Equal(t, ExtendedYear, fs.Newer(Year, ExtendedYear))

	fs.Set(Year, 2568)
	assert.Equal(t, Year, fs.Newer(ExtendedYear, Year))
	assert.Greater(t, fs.Stamp(Year), fs.Stamp(ExtendedYear))

	fs.ClearField(Year)
	assert.False(t, fs.IsSet(Year))
	assert.Equal(t, 0, fs.Get(Year))

	fs.Clear()
	assert.Empty(t, fs.Snapshot())
}

func TestFieldSet_NewerTieKeepsDefault(t *testing.T) {
	var fs FieldSet
	fs.setInternal(Year, 1)
	fs.setInternal(ExtendedYear, 1)
	assert.Equal(t, ExtendedYear, fs.Newer(ExtendedYear, Year))
}

func TestField_Names(t *testing.T) {
	for _, f := range Fields() {
		parsed, err := ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseField("fortnight")
	assert.Error(t, err)
	assert.Equal(t, "field(99)", Field(99).String())
}

func TestField_JSONKeys(t *testing.T) {
	out, err := json.Marshal(map[Field]int{Year: 2568, Month: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2568,"month":5}`, string(out))

	var back map[Field]int
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, 2568, back[Year])
}

func TestResolvePattern(t *testing.T) {
	var fs FieldSet
	assert.Equal(t, patternMonthDay, resolvePattern(&fs), "nothing set falls back to month and day")

	fs.Set(DayOfWeek, 3)
	assert.Equal(t, patternMonthDay, resolvePattern(&fs), "incomplete combinations never win")

	fs.Set(WeekOfYear, 10)
	assert.Equal(t, patternWeekOfYear, resolvePattern(&fs))

	fs.Set(Month, 4)
	fs.Set(DayOfWeekInMonth, 2)
	assert.Equal(t, patternDayOfWeekInMonth, resolvePattern(&fs))

	fs.Set(DayOfWeek, 5)
	assert.Equal(t, patternWeekOfYear, resolvePattern(&fs), "ties go to the earlier complete combination")

	fs.Set(DayOfYear, 12)
	assert.Equal(t, patternDayOfYear, resolvePattern(&fs))

	fs.Set(DayOfMonth, 4)
	assert.Equal(t, patternMonthDay, resolvePattern(&fs))
}

func TestResolvePattern_SkipsUnsetFields(t *testing.T) {
	var fs FieldSet
	fs.Set(Year, 2568)
	fs.Set(Month, 10)
	fs.Set(DayOfWeekInMonth, 4)
	fs.Set(DayOfWeek, 5)

	assert.Equal(t, patternDayOfWeekInMonth, resolvePattern(&fs),
		"day of week shared with an unset week of year must not pick that combination")
}

func TestEngine_DayOfWeekInMonth(t *testing.T) {
	e := NewEngine(singleTestVariant{}, 1, 1)

	// November 2025: Thursdays fall on the 6th, 13th, 20th and 27th.
	assert.Equal(t, e.ComputeMonthStart(2025, 10)+5, e.dayOfWeekInMonth(2025, 10, 1, 5))
	assert.Equal(t, e.ComputeMonthStart(2025, 10)+26, e.dayOfWeekInMonth(2025, 10, 4, 5))
	assert.Equal(t, e.ComputeMonthStart(2025, 10)+26, e.dayOfWeekInMonth(2025, 10, -1, 5))
	assert.Equal(t, e.ComputeMonthStart(2025, 10)-2, e.dayOfWeekInMonth(2025, 10, 0, 5))
}

func TestNewEngine_FallsBackOnBadWeekSettings(t *testing.T) {
	e := NewEngine(singleTestVariant{}, 0, 9)
	assert.Equal(t, 1, e.FirstDayOfWeek())
	assert.Equal(t, 1, e.MinimalDaysInFirstWeek())
}

// singleTestVariant numbers years like the proleptic Gregorian calendar
// with a single era.
type singleTestVariant struct{}

func (singleTestVariant) Name() string { return "test" }
func (singleTestVariant) ToExtendedYear(y int, _ EraID) int { return y }
func (singleTestVariant) ToEraRelativeYear(y int) (int, EraID) { return y, 0 }
func (singleTestVariant) LegalEras() []EraID { return []EraID{0} }
func (singleTestVariant) YearLimit(kind LimitKind) int {
	if kind <= GreatestMinimum {
		return 1
	}
	return 9999
}
