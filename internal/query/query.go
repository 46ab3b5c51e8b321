// Package query answers "which day is this, in that calendar" requests for
// the HTTP server and the command line.
package query

import (
	"log/slog"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/format"
	"github.com/tartampluch/go-eracal/internal/julian"
)

// Request names a day. JDN wins over Year; with neither the clock's current
// day is used. Month is 0-based, like the MONTH field.
type Request struct {
	Calendar string
	JDN      *int
	Year     *int
	Month    int
	Day      int
	Era      *int
	Lenient  bool
	Locale   string
}

// Result is a fully computed day.
type Result struct {
	Calendar  string                 `json:"calendar"`
	JDN       int                    `json:"jdn"`
	Fields    map[calendar.Field]int `json:"fields"`
	Report    calendar.Report        `json:"report"`
	Formatted string                 `json:"formatted"`
}

// CalendarInfo describes one registered variant.
type CalendarInfo struct {
	Name     string   `json:"name"`
	Eras     []int    `json:"eras"`
	EraNames []string `json:"era_names"`
	MinYear  int      `json:"min_year"`
	MaxYear  int      `json:"max_year"`
}

// Service resolves requests against a registry of variants.
type Service struct {
	Registry  *era.Registry
	Formatter *format.Formatter
	Clock     calendar.Clock

	FirstDayOfWeek         int
	MinimalDaysInFirstWeek int
}

// New returns a service with the default week settings.
func New(r *era.Registry, f *format.Formatter) *Service {
	return &Service{
		Registry:               r,
		Formatter:              f,
		Clock:                  calendar.RealClock{},
		FirstDayOfWeek:         config.DefaultFirstDayOfWeek,
		MinimalDaysInFirstWeek: config.DefaultMinimalDays,
	}
}

// Fields resolves req. An empty calendar name means the default calendar.
// Unknown calendars fail with era.ErrUnknownCalendar; strict requests with
// out-of-range fields fail with a *calendar.ValidationError.
func (s *Service) Fields(req Request) (Result, error) {
	name := req.Calendar
	if name == "" {
		name = config.DefaultCalendar
	}
	v, err := s.Registry.Lookup(name)
	if err != nil {
		return Result{}, err
	}
	c := s.calendar(v, req)

	fields, err := c.Fields()
	if err != nil {
		return Result{}, err
	}
	jdn, err := c.JulianDay()
	if err != nil {
		return Result{}, err
	}
	formatted, err := s.Formatter.Format(c, req.Locale)
	if err != nil {
		return Result{}, err
	}

	slog.Debug(config.MsgFieldsRequest,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCalendar, v.Name(),
		config.LogKeyJDN, jdn,
		config.LogKeyLenient, req.Lenient,
	)
	return Result{
		Calendar:  v.Name(),
		JDN:       jdn,
		Fields:    fields,
		Report:    c.LastReport(),
		Formatted: formatted,
	}, nil
}

// Convert resolves req and re-expresses the same day in target.
func (s *Service) Convert(req Request, target string) (Result, error) {
	from, err := s.Fields(req)
	if err != nil {
		return Result{}, err
	}
	out, err := s.Fields(Request{Calendar: target, JDN: &from.JDN, Lenient: req.Lenient, Locale: req.Locale})
	if err != nil {
		return Result{}, err
	}
	out.Report = from.Report
	return out, nil
}

// Calendars lists the registered variants with their eras named in locale.
func (s *Service) Calendars(locale string) []CalendarInfo {
	names := s.Registry.Names()
	infos := make([]CalendarInfo, 0, len(names))
	for _, name := range names {
		v, err := s.Registry.Lookup(name)
		if err != nil {
			// Removed by a reload since Names.
			continue
		}
		info := CalendarInfo{
			Name:    v.Name(),
			MinYear: v.YearLimit(calendar.Minimum),
			MaxYear: v.YearLimit(calendar.Maximum),
		}
		for _, e := range v.LegalEras() {
			info.Eras = append(info.Eras, int(e))
			info.EraNames = append(info.EraNames, s.Formatter.EraName(locale, v, e))
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *Service) calendar(v calendar.Variant, req Request) *calendar.Calendar {
	opts := []calendar.Option{
		calendar.WithLenient(req.Lenient),
		calendar.WithFirstDayOfWeek(s.FirstDayOfWeek),
		calendar.WithMinimalDaysInFirstWeek(s.MinimalDaysInFirstWeek),
	}
	clock := s.Clock
	if clock == nil {
		clock = calendar.RealClock{}
	}
	opts = append(opts, calendar.WithClock(clock))

	switch {
	case req.JDN != nil:
		return calendar.NewAt(v, *req.JDN, opts...)
	case req.Year != nil:
		c := calendar.New(v, opts...)
		c.Clear()
		if req.Era != nil {
			c.Set(calendar.Era, *req.Era)
		}
		c.SetDate(*req.Year, req.Month, req.Day)
		return c
	default:
		return calendar.NewAt(v, julian.FromTime(clock.Now()), opts...)
	}
}
