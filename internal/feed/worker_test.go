package feed_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-eracal/internal/feed"
)

func TestWorker_SyncNowPublishes(t *testing.T) {
	content := card("Zed", "BDAY:1990-12-31\n") + card("Amy", "BDAY:1990-06-01\n") + card("Bob", "BDAY:1990-06-01\n")

	var published []byte
	w := &feed.Worker{
		Generator: &feed.Generator{Clock: at(2025, 6, 1), Fetcher: serving(content)},
		Sync:      webSync,
		Publish:   func(ics []byte) { published = ics },
	}

	today, err := w.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, today)
	assert.Contains(t, string(published), "BEGIN:VCALENDAR")

	entries := w.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"Amy", "Bob", "Zed"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
}

func TestWorker_FailureKeepsLastFeed(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(card("Amy", "BDAY:1990-06-01\n"))), nil).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("offline"))

	publishes := 0
	w := &feed.Worker{
		Generator: &feed.Generator{Clock: at(2025, 6, 1), Fetcher: fetcher},
		Sync:      webSync,
		Publish:   func([]byte) { publishes++ },
	}

	_, err := w.SyncNow(context.Background())
	require.NoError(t, err)
	_, err = w.SyncNow(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, publishes)
	assert.Len(t, w.Entries(), 1)
}

func TestWorker_RunRepeatsUntilCancelled(t *testing.T) {
	var mu sync.Mutex
	publishes := 0

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(context.Context, string, string, string) io.ReadCloser {
			return io.NopCloser(strings.NewReader(card("Amy", "BDAY:1990-06-01\n")))
		}, nil)

	w := &feed.Worker{
		Generator: &feed.Generator{Clock: at(2025, 6, 1), Fetcher: fetcher},
		Sync:      webSync,
		Interval:  10 * time.Millisecond,
		Publish: func([]byte) {
			mu.Lock()
			publishes++
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return publishes >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RunOnceWithoutInterval(t *testing.T) {
	publishes := 0
	w := &feed.Worker{
		Generator: &feed.Generator{Clock: at(2025, 6, 1), Fetcher: serving(card("Amy", "BDAY:1990-06-01\n"))},
		Sync:      webSync,
		Publish:   func([]byte) { publishes++ },
	}

	w.Run(context.Background())
	assert.Equal(t, 1, publishes)
}
