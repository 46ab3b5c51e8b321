package query_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/format"
	"github.com/tartampluch/go-eracal/internal/query"
)

const jdn20250615 = 2460842

type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time { return m.CurrentTime }

func newService(t *testing.T) *query.Service {
	t.Helper()
	f, err := format.New()
	require.NoError(t, err)
	s := query.New(era.NewRegistry(), f)
	s.Clock = MockClock{CurrentTime: time.Date(2025, 6, 15, 15, 4, 5, 0, time.UTC)}
	return s
}

func ptr(n int) *int { return &n }

func TestService_Fields(t *testing.T) {
	s := newService(t)

	tests := []struct {
		name      string
		req       query.Request
		wantJDN   int
		wantYear  int
		wantMonth int
		wantDay   int
	}{
		{"By day number", query.Request{Calendar: "buddhist", JDN: ptr(jdn20250615)}, jdn20250615, 2568, 5, 15},
		{"By era-relative date", query.Request{Calendar: "buddhist", Year: ptr(2568), Month: 5, Day: 15}, jdn20250615, 2568, 5, 15},
		{"Default calendar", query.Request{Year: ptr(2568), Month: 5, Day: 15}, jdn20250615, 2568, 5, 15},
		{"Minguo", query.Request{Calendar: "roc", Year: ptr(114), Month: 5, Day: 15}, jdn20250615, 114, 5, 15},
		{"Explicit BC era", query.Request{Calendar: "gregorian", Year: ptr(44), Month: 2, Day: 15, Era: ptr(int(era.BC))}, 1705428, 44, 2, 15},
		{"Today from the clock", query.Request{Calendar: "buddhist"}, jdn20250615, 2568, 5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Fields(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJDN, res.JDN)
			assert.Equal(t, tt.wantYear, res.Fields[calendar.Year])
			assert.Equal(t, tt.wantMonth, res.Fields[calendar.Month])
			assert.Equal(t, tt.wantDay, res.Fields[calendar.DayOfMonth])
			assert.True(t, res.Report.OK())
		})
	}
}

func TestService_FieldsToday_IsMidnight(t *testing.T) {
	res, err := newService(t).Fields(query.Request{Calendar: "buddhist"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Fields[calendar.HourOfDay])
	assert.Equal(t, 0, res.Fields[calendar.Minute])
}

func TestService_FieldsTodayStrict(t *testing.T) {
	s := newService(t)
	s.Clock = MockClock{CurrentTime: time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)}

	res, err := s.Fields(query.Request{Calendar: "gregorian"})
	require.NoError(t, err)
	assert.Equal(t, jdn20250615, res.JDN)
	assert.Equal(t, 0, res.Fields[calendar.HourOfDay])

	s.Clock = nil
	res, err = s.Fields(query.Request{Calendar: "buddhist"})
	require.NoError(t, err, "a nil clock falls back to the real time")
	assert.Greater(t, res.JDN, jdn20250615)
}

func TestService_FieldsFormatted(t *testing.T) {
	res, err := newService(t).Fields(query.Request{Calendar: "buddhist", JDN: ptr(jdn20250615), Locale: "th"})
	require.NoError(t, err)
	assert.Equal(t, "วันอาทิตย์ที่ 15 มิถุนายน พ.ศ. 2568", res.Formatted)
	assert.Equal(t, "buddhist", res.Calendar)
}

func TestService_FieldsLenientReportsIssues(t *testing.T) {
	res, err := newService(t).Fields(query.Request{Calendar: "buddhist", Year: ptr(2568), Month: 12, Day: 1, Lenient: true})
	require.NoError(t, err)

	assert.Equal(t, 2569, res.Fields[calendar.Year])
	assert.Equal(t, 0, res.Fields[calendar.Month])
	require.Len(t, res.Report.Issues, 1)
	assert.Equal(t, calendar.Month, res.Report.Issues[0].Field)
	assert.Equal(t, calendar.Normalized, res.Report.Issues[0].Action)
}

func TestService_FieldsErrors(t *testing.T) {
	s := newService(t)

	_, err := s.Fields(query.Request{Calendar: "julian"})
	assert.ErrorIs(t, err, era.ErrUnknownCalendar)

	_, err = s.Fields(query.Request{Calendar: "buddhist", Year: ptr(0), Month: 0, Day: 1})
	var verr *calendar.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, calendar.ErrInvalidYear)
}

func TestService_Convert(t *testing.T) {
	s := newService(t)

	res, err := s.Convert(query.Request{Calendar: "buddhist", Year: ptr(2568), Month: 5, Day: 15}, "roc")
	require.NoError(t, err)
	assert.Equal(t, "roc", res.Calendar)
	assert.Equal(t, jdn20250615, res.JDN)
	assert.Equal(t, 114, res.Fields[calendar.Year])
	assert.Equal(t, int(era.Minguo), res.Fields[calendar.Era])

	_, err = s.Convert(query.Request{Calendar: "buddhist", JDN: ptr(jdn20250615)}, "mayan")
	assert.ErrorIs(t, err, era.ErrUnknownCalendar)
}

func TestService_Calendars(t *testing.T) {
	s := newService(t)
	_, err := s.Registry.Load([]byte("[[calendar]]\nname = \"holocene\"\noffset = -10000\n"))
	require.NoError(t, err)

	infos := s.Calendars("en")
	require.Len(t, infos, 4)

	byName := make(map[string]query.CalendarInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}
	assert.Equal(t, []string{"BE"}, byName["buddhist"].EraNames)
	assert.Equal(t, []int{1, 0}, byName["gregorian"].Eras)
	assert.Equal(t, []string{"AD", "BC"}, byName["gregorian"].EraNames)
	assert.Equal(t, []string{"holocene:0"}, byName["holocene"].EraNames)
	assert.Equal(t, 1, byName["roc"].MinYear)
}
