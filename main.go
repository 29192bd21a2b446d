package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"statshub-app/internal/auth"
	"statshub-app/internal/cache"
	"statshub-app/internal/config"
	"statshub-app/internal/events"
	"statshub-app/internal/league"
	"statshub-app/internal/scheduler"
	"statshub-app/internal/store"
	"statshub-app/internal/summary"
	"statshub-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	appStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer appStore.Close()

	if cfg.App.SeedDemo || !cfg.IsProduction() {
		seeded, err := store.SeedDemo(ctx, appStore, clock.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("seed demo data")
		}
		if seeded {
			log.Info().Msg("seeded demo league")
		}
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	profiles := auth.NewProfiles(appStore, clock)
	provider, local, err := newProvider(ctx, cfg, clock, appStore, profiles)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Auth.Provider).Msg("configure auth")
	}

	leagues := league.NewService(appStore, league.Options{
		Clock:       clock,
		Publisher:   publisher,
		Location:    cfg.Location(),
		TeamListTTL: cfg.Cache.TeamListTTL,
		Workers:     cfg.Scheduler.RecomputeWorkers,
	})

	generator, err := summary.NewHTTPGenerator(ctx, summary.HTTPOptions{
		Endpoint: cfg.Summary.Endpoint,
		Model:    cfg.Summary.Model,
		APIKey:   cfg.Summary.APIKey,
		Timeout:  cfg.Summary.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configure summary generator")
	}
	if cfg.Summary.APIKey == "" {
		log.Warn().Msg("SUMMARY_API_KEY is not set, performance summaries will fail")
	}
	summaries := summary.NewService(generator,
		cache.New[summary.Summary](clock, cache.NoExpiry),
		rate.NewLimiter(rate.Limit(cfg.Summary.PerMin/60), cfg.Summary.Burst),
	)

	sched, err := newScheduler(cfg, clock, leagues, local)
	if err != nil {
		log.Fatal().Err(err).Msg("configure scheduler")
	}
	sched.Start()
	defer sched.Stop()

	server := web.NewServer(web.Options{
		Leagues:        leagues,
		Profiles:       profiles,
		Summaries:      summaries,
		Provider:       provider,
		Local:          local,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})
	handler := server.Routes()

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Info().Msg("starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.StartWithOptions(adapter.ProxyWithContext, lambda.WithContext(ctx))
		return
	}

	if err := serve(ctx, cfg, handler); err != nil {
		log.Error().Err(err).Msg("server terminated with error")
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Str("app", cfg.App.Name).Logger()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Store.PostgresDSN, store.PostgresOptions{MigrationsDir: cfg.Store.MigrationsDir})
	case "sqlite":
		return store.NewSQLiteStore(ctx, cfg.Store.SQLitePath, store.SQLiteOptions{MigrationsDir: cfg.Store.MigrationsDir})
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, store.MongoOptions{Database: cfg.Store.MongoDatabase})
	case "memory":
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.Events.NATSURL == "" {
		return events.LogPublisher{}
	}
	p, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
	if err != nil {
		log.Error().Err(err).Msg("nats unavailable, logging events instead")
		return events.LogPublisher{}
	}
	return p
}

func newProvider(ctx context.Context, cfg *config.Config, clock clockwork.Clock, st store.Store, profiles *auth.Profiles) (auth.Provider, *auth.LocalProvider, error) {
	if cfg.Auth.Provider == "clerk" {
		p, err := auth.NewClerkProvider(cfg.Auth.ClerkSecretKey)
		return p, nil, err
	}
	local := auth.NewLocalProvider(st, clock, cfg.Auth.SessionTTL)
	if cfg.Auth.BootstrapEmail != "" && cfg.Auth.BootstrapPassword != "" {
		id, err := local.EnsureAccount(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword, "League Creator")
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap account: %w", err)
		}
		if _, err := profiles.Bootstrap(ctx, id); err != nil {
			return nil, nil, fmt.Errorf("bootstrap creator: %w", err)
		}
		log.Info().Str("email", id.Email).Msg("bootstrap creator ready")
	}
	return local, local, nil
}

func newScheduler(cfg *config.Config, clock clockwork.Clock, leagues *league.Service, local *auth.LocalProvider) (*scheduler.Service, error) {
	sched, err := scheduler.New(clock)
	if err != nil {
		return nil, err
	}
	caches := map[string]cache.Sweeper{"team_names": leagues.TeamNameCache()}
	if local != nil {
		caches["sessions"] = local.Sessions()
	}
	if err := sched.AddCacheSweep(cfg.Cache.SweepInterval, caches); err != nil {
		return nil, err
	}
	if cfg.Scheduler.RecomputeInterval > 0 {
		if err := sched.AddRecompute(cfg.Scheduler.RecomputeInterval, leagues); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})
	return g.Wait()
}
