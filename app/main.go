package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/cros-releases/app/api"
	"github.com/lysyi3m/cros-releases/app/cfg"
	"github.com/lysyi3m/cros-releases/app/database"
	"github.com/lysyi3m/cros-releases/app/feed"
	"github.com/lysyi3m/cros-releases/app/output"
	"github.com/lysyi3m/cros-releases/app/render"
	"github.com/lysyi3m/cros-releases/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if appCfg == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if appCfg.Serve {
		err = serve(appCfg)
	} else {
		err = runOnce(context.Background(), appCfg)
	}

	if err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func feedOptions(appCfg *cfg.Cfg) (feed.Options, error) {
	style, err := render.ParseStyle(appCfg.Decorator)
	if err != nil {
		return feed.Options{}, err
	}
	return feed.Options{Style: style, Unfiltered: appCfg.Unfiltered}, nil
}

func runOnce(ctx context.Context, appCfg *cfg.Cfg) error {
	format, err := output.ParseFormat(appCfg.Format)
	if err != nil {
		return err
	}

	opts, err := feedOptions(appCfg)
	if err != nil {
		return err
	}

	feedURL, err := feed.BuildFeedURL(appCfg.FeedURL, appCfg.Start, appCfg.Releases)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: appCfg.GetTimeout()}
	data, err := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.GetTimeout()).Run(ctx, feedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := feed.NewParser().Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	releases, err := feed.NewAssembler(render.NewRenderer(), feed.NewFilterer()).Run(entries, opts)
	if err != nil {
		return err
	}
	feed.SortReleases(releases)

	var stateRepo database.StateRepository
	if appCfg.Diff {
		db, err := database.Open(appCfg.DatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()

		stateRepo = database.NewStateRepository(db)
		last, err := stateRepo.GetLastRelease()
		if err != nil {
			return err
		}
		if last != nil {
			releases = feed.FilterSince(releases, *last)
			slog.Debug("Filtered already reported releases", "since", last.Format(time.RFC3339), "remaining", len(releases))
		}
	}

	if err := output.NewWriter(os.Stdout, output.NewDesktopNotifier()).Run(releases, format); err != nil {
		return err
	}

	if stateRepo != nil && len(releases) > 0 {
		if err := stateRepo.SetLastRelease(releases[0].Timestamp); err != nil {
			return err
		}
	}

	return nil
}

func serve(appCfg *cfg.Cfg) error {
	opts, err := feedOptions(appCfg)
	if err != nil {
		return err
	}

	feedURL, err := feed.BuildFeedURL(appCfg.FeedURL, appCfg.Start, appCfg.Releases)
	if err != nil {
		return err
	}

	slog.Info("Connecting to database", "path", appCfg.DatabasePath())
	db, err := database.NewConnection(appCfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	releaseRepo := database.NewReleaseRepository(db)

	httpClient := &http.Client{Timeout: appCfg.GetTimeout()}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.GetTimeout())
	parser := feed.NewParser()
	assembler := feed.NewAssembler(render.NewRenderer(), feed.NewFilterer())

	scheduler := tasks.NewScheduler(func() tasks.TaskInterface {
		return tasks.NewRefreshReleasesTask(feedURL, fetcher, parser, assembler, opts, releaseRepo)
	}, appCfg.GetSchedulerInterval(), appCfg.WorkerCount)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.GetSchedulerInterval().String())
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(api.NewHandler(releaseRepo, scheduler, appCfg.Version)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
