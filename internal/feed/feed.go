// Package feed turns the birthdays and anniversaries of a vCard collection
// into an iCalendar feed whose event titles carry era-relative years.
package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/format"
	"github.com/tartampluch/go-eracal/internal/julian"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
}

// Summary carries what an event title is built from.
type Summary struct {
	Kind      Kind
	Name      string
	Age       int
	YearKnown bool
	Year      int // era-relative year of the occurrence
	Era       calendar.EraID
}

// Generator fetches vCards and renders them as an iCalendar feed.
type Generator struct {
	Clock   calendar.Clock
	Fetcher VCardFetcher

	// Variant numbers the years shown in titles. Nil means Buddhist.
	Variant calendar.Variant

	// Formatter localizes titles and adds the full date as a description.
	// Without it, titles use the plain fallback layout.
	Formatter *format.Formatter
	Lang      string

	// FormatSummary overrides the title of every event.
	FormatSummary func(Summary) string
}

type syncStats struct{ processed, withDate, today int }

// RunSync executes the fetching, parsing, and generation pipeline.
// It returns the ICS data, the dated entries, the count of events today, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []Entry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyMode, cfg.Mode,
		config.LogKeyCalendar, g.variant().Name(),
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, entries, count, err := g.generateCalendar(ctx, reader, cfg.ReminderTrigger)
	if err == nil {
		log.Debug("Sync finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, entries, count, err
}

func (g *Generator) variant() calendar.Variant {
	if g.Variant == nil {
		return era.Buddhist()
	}
	return g.Variant
}

func (g *Generator) clock() calendar.Clock {
	if g.Clock == nil {
		return calendar.RealClock{}
	}
	return g.Clock
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// vCard properties read for each card, in output order.
var datedProps = []struct {
	prop string
	kind Kind
}{
	{config.VCardBDAY, KindBirthday},
	{config.VCardAnniversary, KindAnniversary},
}

func (g *Generator) generateCalendar(ctx context.Context, r io.Reader, reminderTrigger string) ([]byte, []Entry, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Anniversaries follow the local date; only DTSTAMP is in UTC.
	now := g.clock().Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := julian.FromTime(now)
	days := calendar.NewAt(g.variant(), today, calendar.WithLenient(true), calendar.WithClock(g.clock()))

	decoder := vcard.NewDecoder(r)
	var stats syncStats
	var entries []Entry

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyError, err)
			continue
		}
		stats.processed++

		name := cardName(card)
		for _, dp := range datedProps {
			field := card.Get(dp.prop)
			if field == nil || field.Value == "" {
				continue
			}
			date, yearKnown, err := parseDate(field.Value)
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompFeed,
					config.LogKeyValue, field.Value)
				continue
			}
			stats.withDate++

			entry := Entry{
				UID:       entryUID(name, date, dp.kind),
				Name:      name,
				Kind:      dp.kind,
				Date:      date,
				YearKnown: yearKnown,
			}
			next, err := nextOccurrence(days, today, date)
			if err != nil {
				return nil, nil, 0, err
			}
			entry.NextOccurrence = julian.ToTime(next.jdn, now.Location())
			entry.EraYear, entry.Era = next.eraYear, next.era
			if yearKnown {
				entry.AgeNext = next.year - date.Year()
			}
			entries = append(entries, entry)

			events, isToday, err := g.createEvents(days, entry, reminderTrigger, today, now.Location())
			if err != nil {
				return nil, nil, 0, err
			}
			if isToday {
				stats.today++
				slog.Info(config.MsgEventToday,
					config.LogKeyComponent, config.CompFeed,
					config.LogKeyName, name,
					config.LogKeyDate, date.Format(config.DateFormatFullDash),
					config.LogKeyEraYear, entry.EraYear)
			}
			for _, e := range events {
				e.Props.Set(dtStampProp)
				cal.Children = append(cal.Children, e.Component)
			}
		}
	}

	if len(cal.Children) == 0 {
		g.logSuccess(stats)
		return []byte(config.StubVCalendar), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), entries, stats.today, nil
}

func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompFeed,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withDate),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// cardName prefers FN, then N, then a fixed placeholder.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

func entryUID(name string, date time.Time, kind Kind) string {
	input := fmt.Sprintf(config.FormatHashInput, name, date.Format(time.RFC3339), kind, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// createEvents generates events for the previous, current and next year,
// skipping years before the date itself.
func (g *Generator) createEvents(days *calendar.Calendar, entry Entry, reminderTrigger string, today int, loc *time.Location) ([]*ical.Event, bool, error) {
	currentYear, _, _ := julian.DayNumberToDate(today)

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if entry.YearKnown && y < entry.Date.Year() {
			continue
		}
		occ, err := occurrenceIn(days, y, entry.Date)
		if err != nil {
			return nil, false, err
		}
		if occ.jdn == today {
			isToday = true
		}

		age := 0
		if entry.YearKnown {
			age = y - entry.Date.Year()
		}
		summary := g.summary(Summary{
			Kind:      entry.Kind,
			Name:      entry.Name,
			Age:       age,
			YearKnown: entry.YearKnown,
			Year:      occ.eraYear,
			Era:       occ.era,
		})

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, entry.UID, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropCategories, string(entry.Kind))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(julian.ToTime(occ.jdn, loc))
		event.Props.Set(dtStartProp)

		if g.Formatter != nil {
			desc, err := g.Formatter.Format(days, g.Lang)
			if err != nil {
				return nil, false, err
			}
			event.Props.SetText(config.PropDescription, desc)
		}

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday, nil
}

func (g *Generator) summary(s Summary) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(s)
	}
	withAge := s.YearKnown && s.Age > 0

	if g.Formatter == nil {
		if withAge {
			return fmt.Sprintf(config.FallbackSummaryAge, s.Name, s.Age, s.Year, g.variant().Name())
		}
		return fmt.Sprintf(config.FallbackSummary, s.Name, s.Year, g.variant().Name())
	}

	key := config.TKeyEvtBirthday
	switch {
	case s.Kind == KindAnniversary && withAge:
		key = config.TKeyEvtAnniversaryAge
	case s.Kind == KindAnniversary:
		key = config.TKeyEvtAnniversary
	case withAge:
		key = config.TKeyEvtBirthdayAge
	}
	return g.Formatter.Message(g.Lang, key, map[string]any{
		"Name": s.Name,
		"Age":  s.Age,
		"Year": s.Year,
		"Era":  g.Formatter.EraName(g.Lang, g.variant(), s.Era),
	})
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// parseDate handles the vCard date layouts seen in the wild. Dates without a
// year get a leap-year placeholder so that --02-29 survives.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
