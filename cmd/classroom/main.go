// Package main is the entry point of the classroom hub service.
//
// The service keeps one class in memory: points and leaderboard, attendance,
// seating, syllabus and timetable, the teaching logbook, announcements and the
// parent chat. Everything is exposed over a JSON API. Redis is optional and
// only mirrors read models.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alem-hub/classroom-hub/config"
	"github.com/alem-hub/classroom-hub/internal/application/command"
	"github.com/alem-hub/classroom-hub/internal/application/store"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/slide"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/persistence/projections"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/scheduler/jobs"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/service"
	httpserver "github.com/alem-hub/classroom-hub/internal/interface/http"
	"github.com/alem-hub/classroom-hub/internal/interface/http/handlers"
	"github.com/alem-hub/classroom-hub/pkg/circuitbreaker"
	"github.com/alem-hub/classroom-hub/pkg/logger"
	"github.com/alem-hub/classroom-hub/pkg/retry"
	"github.com/alem-hub/classroom-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:   cfg.Observability.LogLevel,
		Format:  logger.Format(cfg.Observability.LogFormat),
		Debug:   cfg.App.Debug,
		Service: cfg.App.Name,
		Output:  os.Stdout,
	})
	slog.SetDefault(log)
	log.Info("starting classroom hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"features", enabledFeatures(cfg.Features),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STATE STORE
	// ─────────────────────────────────────────────────────────────────────────
	ids := service.NewIDGenerator()
	engine := classroom.NewEngine(ids, log.With(logger.Component("engine")))

	initial := classroom.NewEmptyState()
	if cfg.Classroom.SeedDemo {
		initial = classroom.NewDemoState(timeutil.Now())
	}
	st := store.New(engine, initial, log.With(logger.Component("store")))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)

	var (
		mirror       projections.LeaderboardMirror
		mirrorReader httpserver.MirrorReader
		redisPinger  jobs.Pinger
		publisher    service.ToastPublisher
		breaker      *circuitbreaker.CircuitBreaker
	)
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...", "addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		cache, err := redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("Redis unavailable, running in memory only", "error", err)
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = cache.Close()
			}()
			healthChecker.AddCheck("redis", handlers.NewPingCheck(cache))
			redisPinger = cache

			breaker = circuitbreaker.RedisBreaker(func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			})
			if cfg.Features.IsEnabled(config.FeatureLeaderboardMirror) {
				lc := redis.NewLeaderboardCache(cache)
				mirror, mirrorReader = lc, lc
			}
			if cfg.Features.IsEnabled(config.FeatureToastBroadcast) {
				publisher = redis.NewToastPublisher(cache, breaker)
			}
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. PROJECTIONS
	// ─────────────────────────────────────────────────────────────────────────
	leaderboard := projections.NewLeaderboardView(mirror, log.With(logger.Component("leaderboard")),
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(200*time.Millisecond),
		retry.WithMaxDelay(2*time.Second),
		retry.WithJitter(0.2),
	).WithBreaker(breaker)
	leaderboard.Rebuild(st.State(), st.Version())
	unsubscribe := st.Subscribe(leaderboard.Handle)
	defer unsubscribe()

	projCtx, projCancel := context.WithCancel(ctx)
	defer projCancel()
	go leaderboard.Run(projCtx)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SERVICES & ACTIONS
	// ─────────────────────────────────────────────────────────────────────────
	toasts := service.NewToastService(st, ids, publisher, service.ToastServiceConfig{
		TTL:   cfg.Classroom.ToastTTL,
		Clock: timeutil.Now,
	}, log.With(logger.Component("toasts")))

	var slides slide.Generator
	if cfg.Features.IsEnabled(config.FeatureSlidesGeneration) {
		slides = service.NewSimulatedSlideGenerator(st, cfg.Classroom.SlideDelay, log.With(logger.Component("slides")))
	}

	commands := command.NewHandler(st, ids, toasts, slides, log.With(logger.Component("actions")), command.HandlerConfig{
		SignerName:       cfg.Classroom.SignerName,
		AutoReplyDelay:   cfg.Classroom.AutoReplyDelay,
		DisableAutoReply: !cfg.Features.IsEnabled(config.FeatureChatAutoReply),
		Clock:            timeutil.Now,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 7. BACKGROUND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{Logger: log.With(logger.Component("scheduler"))})
	if cfg.Classroom.ToastTTL > 0 && cfg.Classroom.ToastSweepInterval > 0 {
		if err := sched.Register(jobs.NewSweepToastsJob(toasts, log), scheduler.Every(cfg.Classroom.ToastSweepInterval)); err != nil {
			return fmt.Errorf("register toast sweep: %w", err)
		}
	}
	if mirror != nil && cfg.Redis.ResyncInterval > 0 {
		resync := jobs.NewResyncLeaderboardJob(leaderboard, log.With(logger.Component("jobs"))).
			WithBreakerRecovery(redisPinger, breaker)
		if err := sched.Register(resync, scheduler.Every(cfg.Redis.ResyncInterval)); err != nil {
			return fmt.Errorf("register leaderboard resync: %w", err)
		}
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		_ = sched.Stop()
	}()

	healthChecker.AddCheck("state", func(context.Context) error {
		if st.State().Schedule.Days == nil {
			return fmt.Errorf("state tree not initialized")
		}
		return nil
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnablePurchases = cfg.Features.IsEnabled(config.FeatureStorePurchases)
	httpConfig.Version = cfg.App.Version

	var operations httpserver.OperationDispatcher
	if cfg.Features.IsEnabled(config.FeatureOperationReplay) {
		operations = st
	}

	server := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		Commands:      commands,
		State:         st,
		Leaderboard:   leaderboard,
		Operations:    operations,
		Mirror:        mirrorReader,
		Jobs:          sched,
		HealthChecker: healthChecker,
		Logger:        log.With(logger.Component("http")),
		Clock:         timeutil.Now,
	})
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("classroom hub is running", "http_address", httpConfig.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Error("http server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		log.Warn("shutdown completed with errors")
		return nil
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func enabledFeatures(ff *config.FeatureFlags) []string {
	var on []string
	for _, name := range ff.Names() {
		if ff.IsEnabled(name) {
			on = append(on, name)
		}
	}
	return on
}
