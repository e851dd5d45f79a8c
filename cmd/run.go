package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"betting/api"
	"betting/config"
	"betting/database"
	"betting/events"
	"betting/footballdata"
	"betting/metrics"
	"betting/notify"
	"betting/repository"
	"betting/scheduler"
	"betting/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := ConfigureLogging(cfg.LogLevel, cfg.Environment); err != nil {
		return err
	}
	log.Info("Starting betting service...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	appMetrics.Attach(eventBus)

	closeIntegrations, err := attachIntegrations(cfg, eventBus)
	if err != nil {
		return err
	}
	defer closeIntegrations()

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	betService := service.NewBetService(uowFactory)
	balanceService := service.NewBalanceService(uowFactory, cfg.MinDeposit)
	settlementService := service.NewSettlementService(uowFactory)
	fixtureInfoService := service.NewFixtureInfoService(uowFactory, provider)
	syncService := service.NewSyncService(uowFactory, provider, service.NewOddsGenerator(nil), service.SyncConfig{
		Delay:            cfg.SyncCompetitionDelay,
		CompetitionCodes: cfg.SyncCompetitionCodes,
		RegenerateOdds:   cfg.RegenerateOddsOnResync,
	})

	jobs := scheduler.New(ctx, cfg.JobTimeout, appMetrics)
	if err := jobs.Every(scheduler.JobFixtureSync, cfg.SyncInterval, syncService.Run); err != nil {
		return err
	}
	if err := jobs.Every(scheduler.JobSettlementSweep, cfg.SettlementInterval, func(ctx context.Context) error {
		_, err := settlementService.Sweep(ctx)
		return err
	}); err != nil {
		return err
	}
	jobs.Start()
	if err := jobs.RunNow(scheduler.JobFixtureSync); err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Bets:     betService,
			Balances: balanceService,
			Fixtures: fixtureInfoService,
			Gatherer: registry,
			Health:   db.Health,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	log.Infof("Betting service is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server failed")
		}
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Error stopping scheduler")
	}

	log.Info("Shutdown completed")
	return nil
}

// newProvider builds the football-data client, cached through Redis when REDIS_ADDR is set
func newProvider(ctx context.Context, cfg *config.Config) (*footballdata.Client, func(), error) {
	var opts []footballdata.Option
	closeFn := func() {}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, provider responses will not be cached")
			_ = rdb.Close()
		} else {
			opts = append(opts, footballdata.WithCache(footballdata.NewRedisCache(rdb), cfg.ProviderCacheTTL))
			closeFn = func() { _ = rdb.Close() }
			log.Infof("Caching provider responses in Redis at %s", cfg.RedisAddr)
		}
	}

	client, err := footballdata.NewClient(footballdata.Config{
		BaseURL: cfg.FootballDataBaseURL,
		APIKey:  cfg.FootballDataAPIKey,
		Timeout: cfg.FootballDataTimeout,
	}, opts...)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create fixture provider: %w", err)
	}
	return client, closeFn, nil
}

// attachIntegrations subscribes the optional NATS forwarder and Discord notifier to the bus
func attachIntegrations(cfg *config.Config, bus *events.Bus) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		events.NewNATSForwarder(nc, "betting").Attach(bus)
		closers = append(closers, func() {
			if err := nc.Drain(); err != nil {
				log.WithError(err).Error("Error draining NATS connection")
			}
		})
		log.Infof("Forwarding events to NATS at %s", cfg.NATSURL)
	}

	if cfg.DiscordToken != "" {
		notifier, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to initialize Discord notifier: %w", err)
		}
		notifier.Attach(bus)
		closers = append(closers, func() {
			if err := notifier.Close(); err != nil {
				log.WithError(err).Error("Error closing Discord session")
			}
		})
		log.Info("Posting bet notifications to Discord")
	}

	return closeAll, nil
}
