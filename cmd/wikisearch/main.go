package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/config"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/metrics"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/server"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/view/term"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/view/tui"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/view/web"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/logging"
	mw "github.com/DjordjeVuckovic/wiki-hunter/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/wiki-hunter/pkg/server"
)

const (
	sweepInterval = time.Minute
	sessionIdle   = 30 * time.Minute
)

func main() {
	cli := parseFlags()
	if err := cli.validate(); err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	if cli.Mode == "tui" && cfg.Log.File == "" {
		// the alternate screen owns stdout
		logging.Discard()
	} else {
		closer, err := logging.Setup(level, cfg.Log.File)
		if err != nil {
			slog.Error("Failed to open log file", "path", cfg.Log.File, "error", err)
			os.Exit(1)
		}
		defer closer.Close()
	}

	recorder := metrics.NewRecorder()
	client, err := wiki.NewClient(cfg.Wiki.APIURL,
		wiki.WithHttpClient(&http.Client{Timeout: cfg.Wiki.Timeout}),
		wiki.WithPageSize(cfg.Wiki.PageSize),
		wiki.WithUserAgent(cfg.Wiki.UserAgent),
		wiki.WithObserver(recorder.Observe),
	)
	if err != nil {
		slog.Error("Failed to create wiki client", "error", err)
		os.Exit(1)
	}

	newSession := func() *session.Session {
		return session.New(client,
			session.WithMessages(cfg.Messages),
			session.WithLogger(slog.Default()),
		)
	}

	switch cli.Mode {
	case "web":
		err = runWeb(cfg, client, newSession)
	case "tui":
		err = tui.Run(newSession(), client.Host(), cli.Query)
	case "query":
		err = runQuery(cli, client, newSession(), recorder)
	}
	if err != nil {
		slog.Error("Run failed", "mode", cli.Mode, "error", err)
		os.Exit(1)
	}
}

func runWeb(cfg *config.Config, client *wiki.Client, factory web.Factory) error {
	registry := web.NewRegistry(factory)

	s := server.New(&cfg.Server, pkgserver.NewOkHealthChecker()).
		SetupMiddlewares(mw.WithSkipSuffix("/events")).
		SetupErrorHandler().
		SetupHealthChecks("/health")

	h, err := web.NewHandler(s.Echo, registry, client.Host())
	if err != nil {
		return err
	}
	h.Bind()

	go registry.RunSweeper(s.Context(), sweepInterval, sessionIdle)
	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, closing sessions...", "sessions", registry.Len())
		registry.CloseAll()
	}()

	return s.Start()
}

func runQuery(cli cliConfig, client *wiki.Client, sess *session.Session, recorder *metrics.Recorder) error {
	defer sess.Close()

	sess.Submit(cli.Query)
	sess.Wait()
	for page := 1; page < cli.Pages && sess.Snapshot().HasMore; page++ {
		sess.LoadMore()
		sess.Wait()
		if sess.Snapshot().ErrorMessage != "" {
			break
		}
	}

	p := term.NewPrinter(os.Stdout, client.Host())
	if err := p.Print(sess.Snapshot()); err != nil {
		return err
	}
	if cli.Stats {
		return p.PrintSummary(recorder.Summary())
	}
	return nil
}
