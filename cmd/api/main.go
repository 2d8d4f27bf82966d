package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/reliefhub/internal/auth"
	"github.com/geocoder89/reliefhub/internal/cache"
	"github.com/geocoder89/reliefhub/internal/config"
	"github.com/geocoder89/reliefhub/internal/db"
	httpx "github.com/geocoder89/reliefhub/internal/http"
	"github.com/geocoder89/reliefhub/internal/observability"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	loginTTL, err := auth.ParseExpiresIn(cfg.JWTExpiresIn)
	if err != nil {
		log.Error("invalid EXPIRES_IN", "value", cfg.JWTExpiresIn, "err", err)
		os.Exit(1)
	}

	bootCtx, cancelBoot := config.WithTimeout(15 * time.Second)
	defer cancelBoot()

	shutdownTracer, err := observability.InitTracer(bootCtx, observability.TracingConfig{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	st, err := db.OpenStore(bootCtx, cfg)
	if err != nil {
		log.Error("store connect failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	log.Info("document store connected", "driver", cfg.StoreDriver)

	if err := db.EnsureAdminUser(bootCtx, st.Collection(store.Users), cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// leaderboard cache: shared redis when configured, per process only for
	// the memory store, otherwise off
	var aggregates cache.Cache
	if cfg.LocalCache() {
		aggregates = cache.NewMemory(cfg.CacheTTL)
	}
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
			Prefix:   "reliefhub:",
		})

		if err := redisCache.Ping(bootCtx); err != nil {
			log.Warn("redis unreachable, aggregates will not be cached until it recovers", "addr", cfg.RedisAddr, "err", err)
		}
		aggregates = redisCache
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := httpx.NewRouter(log, httpx.Deps{
		Store:    st,
		Cache:    aggregates,
		Prom:     observability.NewProm(reg),
		Sessions: auth.NewManager(cfg.AccessTokenSecret, auth.SessionTTL),
		Logins:   auth.NewManager(cfg.LoginSecret(), loginTTL),
	}, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := st.Close(ctx); err != nil {
			log.Error("store close failed", "err", err)
		}

		if redisCache != nil {
			if err := redisCache.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

