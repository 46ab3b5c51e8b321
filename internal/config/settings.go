package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Port string `mapstructure:"port"`
}

// FeedSettings configures the vCard source and the generated iCalendar feed.
type FeedSettings struct {
	RefreshIntervalMin int    `mapstructure:"refresh_interval_min"`
	SourceMode         string `mapstructure:"source_mode"`
	LocalPath          string `mapstructure:"local_path"`
	WebURL             string `mapstructure:"web_url"`
	WebUser            string `mapstructure:"web_user"`
	ReminderTrigger    string `mapstructure:"reminder_trigger"`
}

// Settings holds all runtime configuration.
// Values are populated from .eracal.yaml, ERACAL_* env vars, and CLI flags.
type Settings struct {
	Calendar               string         `mapstructure:"calendar"`
	Lenient                bool           `mapstructure:"lenient"`
	Locale                 string         `mapstructure:"locale"`
	FirstDayOfWeek         int            `mapstructure:"first_day_of_week"`
	MinimalDaysInFirstWeek int            `mapstructure:"minimal_days_in_first_week"`
	VariantsFile           string         `mapstructure:"variants_file"`
	Debug                  bool           `mapstructure:"debug"`
	Server                 ServerSettings `mapstructure:"server"`
	Feed                   FeedSettings   `mapstructure:"feed"`
}

// SetDefaults registers the built-in default of every settings key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCalendar, DefaultCalendar)
	v.SetDefault(KeyLenient, DefaultLenient)
	v.SetDefault(KeyLocale, DefaultLocale)
	v.SetDefault(KeyFirstDayOfWeek, DefaultFirstDayOfWeek)
	v.SetDefault(KeyMinimalDays, DefaultMinimalDays)
	v.SetDefault(KeyVariantsFile, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyRefreshMin, DefaultRefreshMin)
	v.SetDefault(KeySourceMode, SourceModeLocal)
	v.SetDefault(KeyLocalPath, "")
	v.SetDefault(KeyWebURL, "")
	v.SetDefault(KeyWebUser, "")
	v.SetDefault(KeyReminder, "")
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values that cannot be corrected later on.
func (s Settings) Validate() error {
	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if s.FirstDayOfWeek < 1 || s.FirstDayOfWeek > 7 {
		return fmt.Errorf("%s: %s=%d", ErrSettingsLoad, KeyFirstDayOfWeek, s.FirstDayOfWeek)
	}
	if s.MinimalDaysInFirstWeek < 1 || s.MinimalDaysInFirstWeek > 7 {
		return fmt.Errorf("%s: %s=%d", ErrSettingsLoad, KeyMinimalDays, s.MinimalDaysInFirstWeek)
	}
	switch s.Feed.SourceMode {
	case SourceModeLocal, SourceModeWeb:
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Feed.SourceMode)
	}
	return nil
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
