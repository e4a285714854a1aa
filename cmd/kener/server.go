package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rajnandan1/kener-sub002/internal/aggregate"
	"github.com/rajnandan1/kener-sub002/internal/badge"
	"github.com/rajnandan1/kener-sub002/internal/checker"
	"github.com/rajnandan1/kener-sub002/internal/config"
	"github.com/rajnandan1/kener-sub002/internal/endpoint"
	"github.com/rajnandan1/kener-sub002/internal/incident"
	"github.com/rajnandan1/kener-sub002/internal/ingest"
	"github.com/rajnandan1/kener-sub002/internal/store"
)

// compactSchedule is how often fragment files merge into the event
// log. It also bounds how stale the page can be after a webhook.
const compactSchedule = "@every 1m"

const defaultCheckSchedule = "@every 1m"

func (cmd *KenerCommand) RunServer(ctx context.Context, site *config.Site) (exitCode int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := site.ValidateForServing(); err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}

	s, err := store.New(site.DataDir, cmd.ErrStream)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: failed to open data directory: %s\n", err)
		return 1
	}
	for _, m := range site.Monitors {
		if err := s.Prepare(m); err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
			return 1
		}
	}

	writer := ingest.NewWriter(s, site.Monitors)

	chk, err := checker.New(writer, site.Monitors)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}

	backend := endpoint.Backend{
		Site:       site,
		Store:      s,
		Aggregator: &aggregate.Aggregator{Store: s},
		Correlator: &incident.Correlator{
			Issues:   incident.NewGitHubStore(site.GitHub),
			Markdown: incident.PlainRenderer{},
			Reporter: s,
		},
		Ingest:    writer,
		Badge:     &badge.Renderer{Store: s},
		AccessLog: cmd.OutStream,
	}

	scheduler := cron.New()

	scheduler.AddFunc(compactSchedule, func() {
		s.CompactAll(site.Monitors, time.Now())
	})

	for _, m := range site.Monitors {
		if m.API == nil {
			continue
		}
		monitor := m
		schedule := monitor.API.Interval
		if schedule == "" {
			schedule = defaultCheckSchedule
		}
		if _, err := scheduler.AddFunc(schedule, func() {
			if err := chk.Check(ctx, monitor); err != nil {
				s.ReportInternalError("checker:"+monitor.Tag, err.Error())
			}
		}); err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: invalid interval for %s: %s\n", monitor.Tag, err)
			return 2
		}
	}

	// Catch up on anything that accumulated while the server was down.
	s.CompactAll(site.Monitors, time.Now())

	listen := fmt.Sprintf("0.0.0.0:%d", site.Port)
	banner := fmt.Sprintf("starts Kener on http://%s", listen)
	if useColor(cmd.OutStream) {
		banner = "\x1b[1m" + banner + "\x1b[0m"
	}
	fmt.Fprintln(cmd.OutStream, banner)
	for _, m := range site.Monitors {
		mode := "webhook"
		if m.API != nil {
			mode = "webhook+poll"
		}
		fmt.Fprintf(cmd.OutStream, "%s\t%s\n", m.Tag, mode)
	}
	fmt.Fprintln(cmd.OutStream)

	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{Addr: listen, Handler: endpoint.New(backend)}

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		<-ctx.Done()

		go func() {
			<-scheduler.Stop().Done()
			wg.Done()
		}()

		if err := srv.Shutdown(context.Background()); err != nil {
			s.ReportInternalError("api", err.Error())
		}
		wg.Done()
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		s.ReportInternalError("api", err.Error())
		exitCode = 1
	}
	cancel()

	wg.Wait()

	return exitCode
}
