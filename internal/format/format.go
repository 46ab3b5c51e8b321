// Package format renders calendar fields as localized text.
package format

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/julian"
)

//go:embed locales/*.json
var localeFS embed.FS

// Formatter translates month, weekday and era names and renders dates.
// It is safe for concurrent use once created.
type Formatter struct {
	bundle  *i18n.Bundle
	langs   []string
	matcher language.Matcher
}

// New loads the embedded locales. Files that fail to load are skipped and
// logged; English is always the fallback language.
func New() (*Formatter, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc(config.LocaleFormat, json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LocaleDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocaleFilePrefix) || !strings.HasSuffix(name, config.LocaleFileExt) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompFormat,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, config.LocaleFilePrefix), config.LocaleFileExt)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompFormat,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocaleDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompFormat,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompFormat,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	return &Formatter{
		bundle:  bundle,
		langs:   detectedLangs,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

// Languages returns the codes of the loaded locales.
func (f *Formatter) Languages() []string {
	return append([]string(nil), f.langs...)
}

// Match returns the loaded language closest to lang, English when nothing
// matches.
func (f *Formatter) Match(lang string) language.Tag {
	tags := f.bundle.LanguageTags()
	_, idx, _ := f.matcher.Match(language.Make(lang))
	return tags[idx]
}

// Message translates key. Missing keys are returned untranslated.
func (f *Formatter) Message(lang, key string, data map[string]any) string {
	return f.localize(lang, &i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// MonthName returns the name of the 0-based month.
func (f *Formatter) MonthName(lang string, month int) string {
	return f.Message(lang, config.TKeyMonthPrefix+strconv.Itoa(julian.FloorMod(month, 12)), nil)
}

// WeekdayName returns the name of the day of week, 1 (Sunday) to 7.
func (f *Formatter) WeekdayName(lang string, dow int) string {
	return f.Message(lang, config.TKeyWeekdayPrefix+strconv.Itoa(julian.FloorMod(dow-1, 7)+1), nil)
}

// EraName returns the abbreviation of era in variant v. Custom variants
// without a translation get "<calendar>:<era>".
func (f *Formatter) EraName(lang string, v calendar.Variant, era calendar.EraID) string {
	key := fmt.Sprintf("%s%s_%d", config.TKeyEraPrefix, v.Name(), era)
	return f.localize(lang, &i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    key,
			Other: fmt.Sprintf(config.FallbackEraName, v.Name(), era),
		},
	})
}

// Format renders the date of c in lang, e.g. "Sunday, June 15, 2568 BE".
func (f *Formatter) Format(c *calendar.Calendar, lang string) (string, error) {
	fields, err := c.Fields()
	if err != nil {
		return "", err
	}
	return f.Message(lang, config.TKeyDatePattern, map[string]any{
		"Weekday": f.WeekdayName(lang, fields[calendar.DayOfWeek]),
		"Day":     fields[calendar.DayOfMonth],
		"Month":   f.MonthName(lang, fields[calendar.Month]),
		"Year":    fields[calendar.Year],
		"Era":     f.EraName(lang, c.Variant(), calendar.EraID(fields[calendar.Era])),
	}), nil
}

func (f *Formatter) localize(lang string, lc *i18n.LocalizeConfig) string {
	localizer := i18n.NewLocalizer(f.bundle, f.Match(lang).String())
	msg, err := localizer.Localize(lc)
	if err != nil {
		key := lc.MessageID
		if lc.DefaultMessage != nil {
			key = lc.DefaultMessage.ID
		}
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompFormat,
			config.LogKeyKey, key,
			config.LogKeyLang, lang,
			config.LogKeyError, err,
		)
		if msg != "" {
			return msg
		}
		return key
	}
	return msg
}
