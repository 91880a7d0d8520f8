package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/dkeye/Coedit/internal/adapters/auth"
	router "github.com/dkeye/Coedit/internal/adapters/http"
	"github.com/dkeye/Coedit/internal/adapters/rtc"
	"github.com/dkeye/Coedit/internal/adapters/store"
	"github.com/dkeye/Coedit/internal/app"
	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/config"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Set up the global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	docs, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open document store")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		idp          core.IdentityProvider
		sessionStore sessions.Store
	)
	switch cfg.Auth.Provider {
	case "jwt":
		idp = auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.IdentityClaim)
	default:
		cs := cookie.NewStore([]byte(cfg.Secret))
		cs.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		sessionStore = cs
		idp = auth.NewSessionProvider(cs)
	}

	policy, err := app.ParsePolicy(cfg.Relay.SlowConsumer)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid slow consumer policy")
	}

	var relays []*orch.Orchestrator
	for _, mode := range cfg.RelayModes() {
		opts := orch.Options{
			Strategy:       orch.NewStrategy(mode),
			Policy:         policy,
			Metrics:        m,
			TrustClientIDs: cfg.Relay.TrustClientIDs,
		}
		if cfg.Relay.ValidateSignals {
			opts.ValidateSignal = rtc.ValidateSignal
		}
		relays = append(relays, orch.New(opts))
		log.Info().Str("mode", string(mode)).Bool("trust_client_ids", cfg.Relay.TrustClientIDs).Msg("relay enabled")
	}

	r := router.SetupRouter(ctx, router.Deps{
		Config:   cfg,
		Relays:   relays,
		Identity: idp,
		Store:    docs,
		Sessions: sessionStore,
		Metrics:  m,
		Gatherer: reg,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Coedit server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Hijacked WebSocket connections are not tracked by srv.Shutdown.
	for _, relay := range relays {
		relay.Shutdown()
	}
	err = multierr.Combine(srv.Shutdown(shutdownCtx), docs.Close())
	if err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
