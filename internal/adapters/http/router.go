package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Coedit/internal/adapters/auth"
	"github.com/dkeye/Coedit/internal/adapters/signal"
	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/config"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/metrics"
)

// Deps is everything the router wires together.
type Deps struct {
	Config   *config.Config
	Relays   []*orch.Orchestrator
	Identity core.IdentityProvider
	Store    core.DocumentStore
	// Sessions backs the session cookie; nil disables it.
	Sessions sessions.Store
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func SetupRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if d.Sessions != nil {
		r.Use(sessions.Sessions(auth.SessionName, d.Sessions))
	}
	r.Use(IdentityMiddleware(d.Identity))

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	limits := signal.Limits{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		PongWait:     cfg.PongWait,
		WriteWait:    cfg.WriteWait,
		SendBuffer:   cfg.SendBuffer,
		RateLimit:    cfg.Relay.RateLimit,
		RateInterval: cfg.Relay.RateInterval,
	}
	// Cookie sessions ride along on cross-site upgrades, so they default to same origin.
	checkOrigin := signal.OriginChecker(cfg.AllowedOrigins, d.Sessions != nil)
	for _, relay := range d.Relays {
		ctrl := signal.NewSignalWSController(relay, d.Identity, d.Metrics, limits, checkOrigin)
		mode := string(relay.Mode())
		api.GET("/ws/"+mode, func(c *gin.Context) {
			log.Debug().Str("module", "adapters.http").Str("mode", mode).Msg("ws signal endpoint hit")
			ctrl.HandleSignal(ctx, c)
		})
	}

	rooms := roomsHandler{relays: d.Relays}
	api.GET("/rooms", rooms.list)
	api.DELETE("/rooms/:mode/:id", RequireIdentity(), rooms.evict)

	api.GET("/ice", iceHandler(cfg))

	api.GET("/me", RequireIdentity(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentIdentity(c).Handle})
	})

	if cfg.Auth.DevLogin && d.Sessions != nil {
		log.Warn().Str("module", "adapters.http").Msg("dev login enabled")
		api.POST("/login", devLogin)
		api.POST("/logout", logout)
	}

	docs := documentsHandler{store: d.Store}
	api.GET("/documents", RequireIdentity(), docs.list)
	api.GET("/documents/:id/state", RequireIdentity(), docs.get)
	api.POST("/documents/:id/state", RequireIdentity(), docs.put)

	return r
}
