package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/config"
	"github.com/hamed0406/timetablesvc/internal/enquiry"
	"github.com/hamed0406/timetablesvc/internal/httpapi"
	"github.com/hamed0406/timetablesvc/internal/logging"
	"github.com/hamed0406/timetablesvc/internal/metrics"
	"github.com/hamed0406/timetablesvc/internal/monitors"
	"github.com/hamed0406/timetablesvc/internal/notify"
	"github.com/hamed0406/timetablesvc/internal/probe"
	"github.com/hamed0406/timetablesvc/internal/repo"
	"github.com/hamed0406/timetablesvc/internal/repo/memory"
	"github.com/hamed0406/timetablesvc/internal/repo/postgres"
	"github.com/hamed0406/timetablesvc/internal/scheduler"
	"github.com/hamed0406/timetablesvc/internal/shortener"
	"github.com/hamed0406/timetablesvc/internal/transport"
	"github.com/hamed0406/timetablesvc/internal/venue"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New("api", cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer closeStore()

	m := metrics.New()
	client := transport.NewHTTP(cfg.HTTPTimeout)

	agg := probe.NewAggregator(client,
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithLogger(logger),
		probe.WithRecorder(m),
	)
	defs := monitors.Catalogue(monitors.Endpoints{
		Search:       cfg.SearchURL,
		VenuesProxy:  cfg.VenuesProxyURL,
		Contributors: cfg.ContributorsURL,
		Analytics:    cfg.AnalyticsURL,
		NextBus:      cfg.NextBusURL,
		Export:       cfg.ExportURL,
	}.Merge(monitors.DefaultEndpoints()))

	var mailer notify.Mailer = notify.LogMailer{Logger: logger}
	if cfg.SMTPHost != "" {
		smtp, err := notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.FromAddress,
		})
		if err != nil {
			logger.Fatal("smtp_init_failed", zap.Error(err))
		}
		mailer = smtp
	} else {
		logger.Warn("smtp_disabled", zap.String("reason", "SMTP_HOST empty; enquiries are only logged"))
	}

	mockGitHub := cfg.MockGitHub
	var tracker notify.IssueTracker
	if cfg.GitHubOrg != "" && cfg.GitHubRepo != "" {
		tracker = notify.NewGitHubIssues(client.Client, cfg.GitHubToken, cfg.GitHubOrg, cfg.GitHubRepo)
	} else if !mockGitHub {
		logger.Warn("github_disabled", zap.String("reason", "GITHUB_ORG/GITHUB_REPO empty; venue issues are only logged"))
		mockGitHub = true
	}

	api := &httpapi.Server{
		Logger:    logger,
		Status:    agg,
		Probes:    defs,
		Shortener: shortener.New(store, shortener.WithLogger(logger), shortener.WithRecorder(m)),
		Enquiries: enquiry.New(enquiry.Config{
			DirectoryURL:  cfg.FacultyDirectoryURL,
			KillSwitchURL: cfg.KillSwitchURL,
			TeamAddress:   cfg.TeamAddress,
			SiteName:      cfg.SiteName,
			SiteURL:       cfg.SiteURL,
		}, client, mailer, logger),
		Venues: venue.New(venue.Config{
			VenuesURL: cfg.VenuesURL,
			Mock:      mockGitHub,
		}, client, tracker, logger),
		Metrics: m,
		Opts: httpapi.Options{
			StatusTitle:  cfg.StatusTitle,
			ShortURLBase: cfg.ShortURLBase,
			RedirectBase: cfg.RedirectBase,
		},
	}

	if slack := notify.NewSlack(cfg.SlackWebhook, client); slack != nil && cfg.WatchInterval > 0 {
		alerts := notify.Multi{notify.LogNotifier{Logger: logger}, slack}
		alerter := scheduler.NewAlerter(alerts, logger, scheduler.AlerterConfig{AlertOnRecovery: cfg.AlertOnRecovery})
		go scheduler.NewRechecker(logger, agg, defs, alerter, cfg.WatchInterval).Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.URLStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("store_memory", zap.String("reason", "DATABASE_URL empty; short URLs are lost on restart"))
		return memory.New(), func() {}, nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}
