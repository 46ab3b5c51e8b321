package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/tartampluch/go-eracal/internal/config"
)

// Worker regenerates the feed on a schedule and hands each result to
// Publish.
type Worker struct {
	Generator *Generator
	Sync      SyncConfig
	Interval  time.Duration
	Publish   func(ics []byte)

	mu      sync.RWMutex
	entries []Entry
}

// Run syncs once, then every Interval until ctx is done. A non-positive
// interval syncs only once.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_, _ = w.SyncNow(ctx)
	if w.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, w.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			_, _ = w.SyncNow(ctx)
		}
	}
}

// SyncNow runs one synchronization and publishes the feed. It returns the
// number of events falling today. Failures are logged and leave the last
// published feed in place.
func (w *Worker) SyncNow(ctx context.Context) (int, error) {
	ics, entries, today, err := w.Generator.RunSync(ctx, w.Sync)
	if err != nil {
		slog.Error(config.MsgSyncFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err)
		return 0, err
	}

	w.mu.Lock()
	w.entries = entries
	w.mu.Unlock()

	if w.Publish != nil {
		w.Publish(ics)
	}
	return today, nil
}

// Entries returns the entries of the last successful sync, soonest first.
func (w *Worker) Entries() []Entry {
	w.mu.RLock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	w.mu.RUnlock()

	SortUpcoming(out)
	return out
}

// SortUpcoming orders entries by next occurrence, then by name.
func SortUpcoming(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.NextOccurrence.Equal(b.NextOccurrence) {
			return a.Name < b.Name
		}
		return a.NextOccurrence.Before(b.NextOccurrence)
	})
}
