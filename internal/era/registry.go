package era

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
)

// Registry errors.
var (
	ErrUnknownCalendar   = errors.New(config.ErrUnknownCalendar)
	ErrDuplicateCalendar = errors.New(config.ErrDuplicateCalendar)
)

// Definition is one [[calendar]] entry of a definitions file. Entries
// without eras describe a single-era variant shifted by Offset; entries
// with eras describe a Table.
type Definition struct {
	Name       string `toml:"name"`
	Offset     int    `toml:"offset"`
	Era        int    `toml:"era"`
	DefaultEra int    `toml:"default_era"`
	MinYear    int    `toml:"min_year"`
	MaxYear    int    `toml:"max_year"`
	Eras       []Span `toml:"eras"`
}

type definitionsFile struct {
	Calendars []Definition `toml:"calendar"`
}

// Variant builds the variant the definition describes. A zero MinYear means
// 1 and a zero MaxYear means the engine maximum.
func (d Definition) Variant() (calendar.Variant, error) {
	name := strings.ToLower(strings.TrimSpace(d.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: calendar without a name", ErrInvalidDefinition)
	}
	minYear, maxYear := d.MinYear, d.MaxYear
	if minYear == 0 {
		minYear = 1
	}
	if maxYear == 0 {
		maxYear = config.MaxEraYear
	}

	if len(d.Eras) == 0 {
		if minYear > maxYear {
			return nil, fmt.Errorf("%w: %s: min_year %d > max_year %d", ErrInvalidDefinition, name, minYear, maxYear)
		}
		return Single{ID: name, Offset: d.Offset, Era: calendar.EraID(d.Era), MinYear: minYear, MaxYear: maxYear}, nil
	}

	t := Table{
		ID:      name,
		Spans:   slices.Clone(d.Eras),
		Default: calendar.EraID(d.DefaultEra),
		MinYear: minYear,
		MaxYear: maxYear,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Registry maps calendar names to variants. Built-in and registered variants
// stay for the registry's lifetime; variants from definition files are
// replaced as a whole on every load. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	fixed  map[string]calendar.Variant
	loaded map[string]calendar.Variant
}

// NewRegistry returns a registry holding the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{
		fixed:  make(map[string]calendar.Variant),
		loaded: make(map[string]calendar.Variant),
	}
	for _, v := range []calendar.Variant{Buddhist(), Gregorian(), ROC()} {
		r.fixed[v.Name()] = v
	}
	return r
}

// Register adds a variant that survives later loads of definition files.
func (r *Registry) Register(v calendar.Variant) error {
	name := strings.ToLower(v.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fixed[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCalendar, name)
	}
	if _, ok := r.loaded[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCalendar, name)
	}
	r.fixed[name] = v
	return nil
}

// Lookup returns the variant registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (calendar.Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.fixed[name]; ok {
		return v, nil
	}
	if v, ok := r.loaded[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCalendar, name)
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fixed)+len(r.loaded))
	for n := range r.fixed {
		names = append(names, n)
	}
	for n := range r.loaded {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// LoadFile replaces the loaded variants with the definitions in path.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrDefinitionsRead, err)
	}
	return r.Load(data)
}

// Load replaces the loaded variants with the TOML definitions in data.
// Built-in and registered variants are kept. On error the previous loaded
// variants stay in place.
func (r *Registry) Load(data []byte) (int, error) {
	var file definitionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrDefinitionsParse, err)
	}

	loaded := make(map[string]calendar.Variant, len(file.Calendars))
	for _, d := range file.Calendars {
		v, err := d.Variant()
		if err != nil {
			return 0, err
		}
		if _, ok := loaded[v.Name()]; ok {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCalendar, v.Name())
		}
		loaded[v.Name()] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range loaded {
		if _, ok := r.fixed[name]; ok {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCalendar, name)
		}
	}
	r.loaded = loaded
	return len(loaded), nil
}
