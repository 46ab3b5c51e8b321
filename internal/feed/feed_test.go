package feed_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/feed"
	"github.com/tartampluch/go-eracal/internal/format"
)

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if fn, ok := args.Get(0).(func(context.Context, string, string, string) io.ReadCloser); ok {
		return fn(ctx, url, user, pass), args.Error(1)
	}
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

var webSync = feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}

func serving(content string) *MockFetcher {
	m := new(MockFetcher)
	m.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil)
	return m
}

func card(name, props string) string {
	return "BEGIN:VCARD\nVERSION:4.0\nFN:" + name + "\n" + props + "END:VCARD\n"
}

func at(y int, m time.Month, d int) MockClock {
	return MockClock{CurrentTime: time.Date(y, m, d, 10, 0, 0, 0, time.UTC)}
}

func TestRunSync_Local_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(card("John Doe", "BDAY:2000-01-01\n")), config.FilePermUserRW))

	gen := &feed.Generator{Clock: at(2025, 1, 1)}

	icsData, entries, count, err := gen.RunSync(context.Background(), feed.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Should identify one birthday today")

	require.Len(t, entries, 1)
	assert.Equal(t, "John Doe", entries[0].Name)
	assert.Equal(t, feed.KindBirthday, entries[0].Kind)
	assert.Equal(t, 25, entries[0].AgeNext)
	assert.Equal(t, 2568, entries[0].EraYear)
	assert.Equal(t, era.BE, entries[0].Era)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:John Doe: 25 (2568 buddhist)")
	assert.Contains(t, icsStr, "CATEGORIES:birthday")
}

func TestRunSync_LocalizedSummaries(t *testing.T) {
	f, err := format.New()
	require.NoError(t, err)

	content := card("John Doe", "BDAY:2000-01-01\n") + card("Jane Roe", "ANNIVERSARY:2010-01-01\n") + card("Ann Lee", "BDAY:--01-01\n")

	tests := []struct {
		name  string
		lang  string
		v     *feed.Generator
		wants []string
	}{
		{
			name: "English Buddhist",
			lang: "en",
			wants: []string{
				"SUMMARY:John Doe turns 25 (2568 BE)",
				"SUMMARY:Jane Roe: 15 years (2568 BE)",
				"SUMMARY:Ann Lee's birthday (2568 BE)",
				"DESCRIPTION:Wednesday",
			},
		},
		{
			name: "Thai Buddhist",
			lang: "th",
			wants: []string{
				"SUMMARY:John Doe อายุครบ 25 ปี (พ.ศ. 2568)",
				"SUMMARY:วันเกิดของ Ann Lee (พ.ศ. 2568)",
			},
		},
		{
			name: "English Minguo",
			lang: "en",
			v:    &feed.Generator{Variant: era.ROC()},
			wants: []string{
				"SUMMARY:John Doe turns 25 (114 Minguo)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := tt.v
			if gen == nil {
				gen = &feed.Generator{}
			}
			gen.Clock = at(2025, 1, 1)
			gen.Fetcher = serving(content)
			gen.Formatter = f
			gen.Lang = tt.lang

			icsData, entries, count, err := gen.RunSync(context.Background(), webSync)
			require.NoError(t, err)
			assert.Equal(t, 3, count)
			assert.Len(t, entries, 3)

			for _, want := range tt.wants {
				assert.Contains(t, string(icsData), want)
			}
		})
	}
}

func TestRunSync_BirthdayAndAnniversaryOnOneCard(t *testing.T) {
	gen := &feed.Generator{
		Clock:   at(2025, 6, 1),
		Fetcher: serving(card("Sam Poe", "BDAY:1980-03-10\nANNIVERSARY:2005-09-20\n")),
	}

	icsData, entries, _, err := gen.RunSync(context.Background(), webSync)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, feed.KindBirthday, entries[0].Kind)
	assert.Equal(t, feed.KindAnniversary, entries[1].Kind)
	assert.NotEqual(t, entries[0].UID, entries[1].UID)
	assert.Equal(t, 3, strings.Count(string(icsData), "CATEGORIES:birthday"))
	assert.Equal(t, 3, strings.Count(string(icsData), "CATEGORIES:anniversary"))
	assert.Equal(t, 6, strings.Count(string(icsData), "BEGIN:VEVENT"))
}

func TestRunSync_Web_LeapYear_EdgeCase(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").
		Return(io.NopCloser(strings.NewReader(card("Leap Baby", "BDAY:2000-02-29\n"))), nil)

	gen := &feed.Generator{
		Clock:   at(2025, 3, 1),
		Fetcher: mockFetcher,
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), feed.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Leapling should have birthday on March 1st in non-leap year")

	require.Len(t, entries, 1)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), entries[0].NextOccurrence)
	assert.Contains(t, string(icsData), "DTSTART;VALUE=DATE:20240229", "Leap years keep February 29th")
	assert.Contains(t, string(icsData), "DTSTART;VALUE=DATE:20250301")

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_NextOccurrence(t *testing.T) {
	content := card("Past Birthday", "BDAY:1990-01-01\n") +
		card("Future Birthday", "BDAY:1990-12-31\n") +
		card("Today Birthday", "BDAY:1990-06-01\n")

	gen := &feed.Generator{Clock: at(2025, 6, 1), Fetcher: serving(content)}

	_, entries, _, err := gen.RunSync(context.Background(), webSync)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := make(map[string]feed.Entry)
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), byName["Past Birthday"].NextOccurrence)
	assert.Equal(t, 2569, byName["Past Birthday"].EraYear)
	assert.Equal(t, 36, byName["Past Birthday"].AgeNext)

	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), byName["Future Birthday"].NextOccurrence)
	assert.Equal(t, 2568, byName["Future Birthday"].EraYear)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), byName["Today Birthday"].NextOccurrence)
	assert.Equal(t, 35, byName["Today Birthday"].AgeNext)
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	expectedErr := errors.New("network unreachable")
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, expectedErr)

	gen := &feed.Generator{Clock: at(2025, 1, 1), Fetcher: mockFetcher}

	icsData, entries, count, err := gen.RunSync(context.Background(), webSync)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), config.ErrVCardParse)
	assert.Nil(t, icsData)
	assert.Nil(t, entries)
	assert.Equal(t, 0, count)
}

func TestRunSync_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *feed.Generator
		cfg     feed.SyncConfig
		wantErr string
	}{
		{"Local path missing", &feed.Generator{}, feed.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Web URL missing", &feed.Generator{Fetcher: new(MockFetcher)}, feed.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"No fetcher", &feed.Generator{}, webSync, config.ErrFetcherMissing},
		{"Unknown mode", &feed.Generator{}, feed.SyncConfig{Mode: "carrier-pigeon"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := tt.gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := &feed.Generator{
		Clock:   at(2025, 6, 1),
		Fetcher: serving(card("Alarm Test", "BDAY:1990-01-01\n")),
	}

	cfg := webSync
	cfg.ReminderTrigger = "-P1D"

	icsData, _, _, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VALARM")
	assert.Contains(t, icsStr, "TRIGGER:-P1D")
	assert.Contains(t, icsStr, "ACTION:DISPLAY")
}

func TestRunSync_GeneratesYearRange(t *testing.T) {
	gen := &feed.Generator{
		Clock:   at(2025, 1, 1),
		Fetcher: serving(card("Range Test", "BDAY:1990-12-31\n")),
	}

	icsData, _, _, err := gen.RunSync(context.Background(), webSync)
	require.NoError(t, err)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231")
	assert.Contains(t, icsStr, "SUMMARY:Range Test: 34 (2567 buddhist)")
	assert.Contains(t, icsStr, "SUMMARY:Range Test: 36 (2569 buddhist)")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_BabyBornThisYear(t *testing.T) {
	gen := &feed.Generator{
		Clock:   at(2025, 1, 1),
		Fetcher: serving(card("Baby", "BDAY:2025-05-01\n")),
		FormatSummary: func(s feed.Summary) string {
			if s.Age == 0 {
				return fmt.Sprintf("Birthday: %s (Birth)", s.Name)
			}
			return fmt.Sprintf("Birthday: %s (%d)", s.Name, s.Age)
		},
	}

	icsData, _, _, err := gen.RunSync(context.Background(), webSync)
	require.NoError(t, err)

	icsStr := string(icsData)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240501", "Should not generate event before birth")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250501")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (Birth)")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20260501")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (1)")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_FutureDateYieldsStub(t *testing.T) {
	gen := &feed.Generator{
		Clock:   at(2025, 1, 1),
		Fetcher: serving(card("Future Baby", "BDAY:2027-01-01\n")),
	}

	icsData, _, _, err := gen.RunSync(context.Background(), webSync)
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(icsData))
}

func TestRunSync_DateFormats(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		expectEvt bool
	}{
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T00:00:00Z", true},
		{"Truncated (Month-Day)", "--10-25", true},
		{"Truncated Basic", "--1025", true},
		{"Garbage Data", "not-a-date", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &feed.Generator{
				Clock:   at(2025, 1, 1),
				Fetcher: serving(card("Test", "BDAY:"+tt.bdayValue+"\n")),
			}

			ics, _, _, _ := gen.RunSync(context.Background(), webSync)
			if tt.expectEvt {
				assert.Contains(t, string(ics), "BEGIN:VEVENT")
			} else {
				assert.NotContains(t, string(ics), "BEGIN:VEVENT")
			}
		})
	}
}

func TestRunSync_ContextCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.vcf")
	require.NoError(t, os.WriteFile(path, nil, config.FilePermUserRW))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &feed.Generator{Clock: at(2025, 1, 1)}
	_, _, _, err := gen.RunSync(ctx, feed.SyncConfig{Mode: config.SourceModeLocal, LocalPath: path})
	assert.Equal(t, context.Canceled, err)
}
