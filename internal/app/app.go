package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/adapters/ratesapi"
	"fxconvert/internal/api"
	"fxconvert/internal/config"
	"fxconvert/internal/converter"
	"fxconvert/internal/jobs"
	httpserver "fxconvert/internal/platform/http"
	"fxconvert/internal/platform/metrics"
	"fxconvert/internal/rate"
	"fxconvert/internal/rate/handler"
	"fxconvert/internal/web"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// Rates source shared by every converter session
	ratesSource := appMetrics.InstrumentSource(ratesapi.NewClient(baseHTTPClient, appCfg.RatesAPI.BaseURL))

	// Session store; converters leaving it are disposed
	sessions, err := cache.NewSessionCache(
		appCfg.Sessions.MaxItems,
		time.Duration(appCfg.Sessions.TTLSeconds)*time.Second,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to create session cache")
		return err
	}
	defer sessions.Close()
	logrus.Info("✅ Session cache created")

	scheduler := jobs.NewScheduler(sessions, appMetrics, time.Duration(appCfg.Scheduler.JobDurationSec)*time.Second)
	// Ensure scheduler stops before the session cache closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	webHandler := web.NewHandler(ctx, sessions, func(sessionID uuid.UUID) *converter.Converter {
		return converter.New(ratesSource, converter.WithLogger(logrus.WithField("session", sessionID)))
	}, appMetrics.SessionsCreatedTotal)

	routerDeps := api.RouterDeps{
		Web:            webHandler,
		Metrics:        appMetrics,
		Gatherer:       registry,
		AllowedOrigins: appCfg.CORS.AllowedOrigins,
	}
	if appCfg.ExchangeRateAPI.APIKey == "" {
		logrus.Warn("Exchange rate api key is not set, /rates and /convert are disabled")
	} else {
		rateClient := httpclient.NewExchangeRateClient(baseHTTPClient, appCfg.ExchangeRateAPI.UpstreamLatestURL())
		rateService := rate.NewService(rateClient, appCfg.ExchangeRateAPI.BaseCode)
		routerDeps.Rates = handler.NewRateHandler(rate.NewValidator(), rateService)
		logrus.Info("✅ Rates endpoint enabled")
	}
	router := api.NewRouter(routerDeps)

	logrus.WithField("rates_api", appCfg.RatesAPI.BaseURL).Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and in-flight fetches
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
