package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-eracal/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"DefaultCalendar", config.DefaultCalendar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultRefreshMin, 0, "Default refresh interval must be positive")
	assert.Equal(t, 2000, config.DefaultLeapYear, "Default leap year must be 2000 for consistency")
	assert.Equal(t, -543, config.BuddhistEraStart, "1 AD must be 544 BE")
	assert.Equal(t, 1, config.DefaultEraYear)
	assert.Contains(t, config.SupportedLanguages, config.DefaultLocale)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Eracal/"), "UserAgent must start with AppName/")
}

func TestLoad_Defaults(t *testing.T) {
	s, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.CalendarBuddhist, s.Calendar)
	assert.True(t, s.Lenient)
	assert.Equal(t, config.DefaultLocale, s.Locale)
	assert.Equal(t, 1, s.FirstDayOfWeek)
	assert.Equal(t, 1, s.MinimalDaysInFirstWeek)
	assert.Equal(t, config.DefaultPort, s.Server.Port)
	assert.Equal(t, config.SourceModeLocal, s.Feed.SourceMode)
	assert.Equal(t, config.DefaultRefreshMin, s.Feed.RefreshIntervalMin)
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eracal.yaml")
	content := `calendar: gregorian
lenient: false
first_day_of_week: 2
minimal_days_in_first_week: 4
server:
  port: "19090"
feed:
  source_mode: web
  web_url: https://dav.example.com/contacts
`
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	t.Setenv("ERACAL_LOCALE", "th")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	s, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, config.CalendarGregorian, s.Calendar)
	assert.False(t, s.Lenient)
	assert.Equal(t, "th", s.Locale)
	assert.Equal(t, 2, s.FirstDayOfWeek)
	assert.Equal(t, 4, s.MinimalDaysInFirstWeek)
	assert.Equal(t, "19090", s.Server.Port)
	assert.Equal(t, config.SourceModeWeb, s.Feed.SourceMode)
	assert.Equal(t, "https://dav.example.com/contacts", s.Feed.WebURL)
}

func TestSettings_Validate(t *testing.T) {
	valid := func() config.Settings {
		return config.Settings{
			FirstDayOfWeek:         1,
			MinimalDaysInFirstWeek: 1,
			Server:                 config.ServerSettings{Port: config.DefaultPort},
			Feed:                   config.FeedSettings{SourceMode: config.SourceModeLocal},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"Valid", func(*config.Settings) {}, ""},
		{"Empty port", func(s *config.Settings) { s.Server.Port = "" }, config.ErrPortRequired},
		{"Port not a number", func(s *config.Settings) { s.Server.Port = "http" }, config.ErrPortNumber},
		{"Port out of range", func(s *config.Settings) { s.Server.Port = "70000" }, config.ErrPortRange},
		{"First day of week", func(s *config.Settings) { s.FirstDayOfWeek = 8 }, config.KeyFirstDayOfWeek},
		{"Minimal days", func(s *config.Settings) { s.MinimalDaysInFirstWeek = 0 }, config.KeyMinimalDays},
		{"Source mode", func(s *config.Settings) { s.Feed.SourceMode = "ftp" }, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")
	assert.Greater(t, config.WatchDebounce, 0*time.Second)

	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
	assert.Less(t, int64(config.MaxHTTPResponseSize), int64(1*1024*1024*1024), "MaxHTTPResponseSize should stay under 1GB to protect RAM")
}
