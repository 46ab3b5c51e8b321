package main

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/feed"
	"github.com/tartampluch/go-eracal/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: "Serve calendar fields and the anniversary feed over HTTP",
		Long:  "Listen on localhost for /fields and /calendars queries. When a vCard source is configured, the anniversary feed is served at / and refreshed every --interval minutes. A --variants file is reloaded whenever it changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().Int(config.FlagInterval, config.DefaultRefreshMin, config.FlagDescInterval)
	a.bind(cmd, config.KeyServerPort, config.FlagPort)
	a.bind(cmd, config.KeyRefreshMin, config.FlagInterval)
	return cmd
}

// serve runs the HTTP server with its background feed worker and
// definitions watcher until ctx is cancelled.
func (a *app) serve(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s := a.settings
	srv := server.NewCalendarServer(s.Server.Port, a.query, server.Defaults{
		Calendar: s.Calendar,
		Lenient:  s.Lenient,
		Locale:   s.Locale,
	})

	// Fallible setup happens before any goroutine starts.
	var worker *feed.Worker
	if a.feedConfigured() {
		gen, err := a.generator()
		if err != nil {
			return err
		}
		worker = &feed.Worker{
			Generator: gen,
			Sync:      a.syncConfig(),
			Interval:  time.Duration(s.Feed.RefreshIntervalMin) * time.Minute,
			Publish:   srv.Update,
		}
	}

	// Opened last so no earlier failure leaks its file handle.
	var watcher *era.Watcher
	if s.VariantsFile != "" {
		var err error
		if watcher, err = era.NewWatcher(s.VariantsFile, a.registry); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	if watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Run(ctx)
		}()
	}
	if worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}

	err := srv.Start(ctx)
	cancel()
	wg.Wait()
	return err
}
