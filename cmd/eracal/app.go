package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/feed"
	"github.com/tartampluch/go-eracal/internal/format"
	"github.com/tartampluch/go-eracal/internal/query"
)

// app carries the dependencies shared by every subcommand. It is filled in
// by setup once flags are parsed.
type app struct {
	v *viper.Viper

	settings  config.Settings
	registry  *era.Registry
	formatter *format.Formatter
	query     *query.Service

	clock   calendar.Clock
	fetcher feed.VCardFetcher

	logCloser io.Closer
}

func newApp() *app {
	return &app{
		v:       viper.New(),
		clock:   calendar.RealClock{},
		fetcher: feed.NewHTTPFetcher(),
	}
}

// setup reads the configuration and builds the shared services.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.readConfig(cmd); err != nil {
		return err
	}
	s, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = s

	a.logCloser = setupLogging(s.Debug, cmd.ErrOrStderr())
	logStartupInfo(cmd.Name())

	a.registry = era.NewRegistry()
	if s.VariantsFile != "" {
		n, err := a.registry.LoadFile(s.VariantsFile)
		if err != nil {
			return err
		}
		slog.Info(config.MsgDefinitionsLoad,
			config.LogKeyComponent, config.CompEra,
			config.LogKeyFile, s.VariantsFile,
			config.LogKeyCount, n)
	}

	a.formatter, err = format.New()
	if err != nil {
		return err
	}

	a.query = query.New(a.registry, a.formatter)
	a.query.Clock = a.clock
	a.query.FirstDayOfWeek = s.FirstDayOfWeek
	a.query.MinimalDaysInFirstWeek = s.MinimalDaysInFirstWeek
	return nil
}

// readConfig looks for an explicit --config file, else .eracal.yaml in the
// working directory then the home directory. A missing default file is fine.
func (a *app) readConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString(config.FlagConfig); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName(config.ConfigFileName)
		a.v.SetConfigType(config.ConfigFileType)
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%s: %w", config.ErrSettingsLoad, err)
		}
	}
	return nil
}

// bind ties a flag to a settings key so the flag overrides file and env.
func (a *app) bind(cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	_ = a.v.BindPFlag(key, f)
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// generator builds a feed generator numbering years in the configured
// calendar.
func (a *app) generator() (*feed.Generator, error) {
	v, err := a.registry.Lookup(a.settings.Calendar)
	if err != nil {
		return nil, err
	}
	return &feed.Generator{
		Clock:     a.clock,
		Fetcher:   a.fetcher,
		Variant:   v,
		Formatter: a.formatter,
		Lang:      a.settings.Locale,
	}, nil
}

// syncConfig maps the feed settings, fetching the web password from the
// OS keyring.
func (a *app) syncConfig() feed.SyncConfig {
	fs := a.settings.Feed
	pass, err := feed.Password(fs.WebUser)
	if err != nil {
		slog.Warn(config.MsgPassFail,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyUser, fs.WebUser,
			config.LogKeyError, err)
	}
	return feed.SyncConfig{
		Mode:            fs.SourceMode,
		LocalPath:       fs.LocalPath,
		WebURL:          fs.WebURL,
		WebUser:         fs.WebUser,
		WebPass:         pass,
		ReminderTrigger: fs.ReminderTrigger,
	}
}

// feedConfigured reports whether the settings name a vCard source.
func (a *app) feedConfigured() bool {
	fs := a.settings.Feed
	switch fs.SourceMode {
	case config.SourceModeLocal:
		return fs.LocalPath != ""
	case config.SourceModeWeb:
		return fs.WebURL != ""
	}
	return false
}
