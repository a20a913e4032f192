package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
	"github.com/heirclark17/talor/internal/research/gate"
	"github.com/heirclark17/talor/internal/research/source"
	"github.com/heirclark17/talor/internal/store"
	"github.com/heirclark17/talor/internal/telemetry"
	"github.com/heirclark17/talor/provider"
)

// Run wires every dependency from configuration and serves the API.
func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })

	reg := prometheus.NewRegistry()
	metrics := telemetry.New(reg)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	ctx := context.Background()

	dsn, err := cfg.Storage.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	engine, err := BuildEngine(cfg, metrics)
	if err != nil {
		return err
	}

	var gen provider.Generator
	if cfg.LLM.APIKey != "" {
		gen, err = provider.NewGenerator(cfg.LLM)
		if err != nil {
			return err
		}
	} else {
		baseLogger.Printf("llm.api_key not set; research responses carry items only")
	}

	var cache *ResultCache
	if cfg.Cache.Enabled {
		if cfg.Cache.Host == "" || cfg.Cache.Port == "" {
			return fmt.Errorf("cache enabled but redis not configured (cache.host/port)")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Cache.Host, cfg.Cache.Port),
			Password: cfg.Cache.Pass,
			DB:       cfg.Cache.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Cache.Host, cfg.Cache.Port, err)
		}
		cache = &ResultCache{Rdb: rdb, TTL: cfg.Cache.TTL}
	}

	secret := cfg.Server.JWTSecret
	if secret == "" {
		secret = cfg.General.JWTSecret
	}
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (server.jwt_secret or general.jwt_secret)")
	}
	auth := &AuthHandler{Store: st, Secret: []byte(secret)}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	rh := &ResearchHandler{
		Engine:    engine,
		Store:     st,
		Cache:     cache,
		Generator: gen,
		Logger:    log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags),
	}
	rh.Register(api.Group("/research"), auth.Secret)

	if addr == "" {
		addr = cfg.Server.Address
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10010"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// BuildEngine assembles the gate, adapters and pipeline from configuration.
func BuildEngine(cfg *config.Config, metrics *telemetry.Metrics) (*research.Engine, error) {
	perDomain := make(map[string]gate.Limit, len(cfg.Gate.PerDomain))
	for host, lim := range cfg.Gate.PerDomain {
		perDomain[host] = gate.Limit{PerSecond: lim.RatePerSecond, Burst: lim.Burst}
	}
	g := gate.New(gate.Options{
		Default:       gate.Limit{PerSecond: cfg.Gate.RatePerSecond, Burst: cfg.Gate.Burst},
		PerDomain:     perDomain,
		MaxWait:       cfg.Gate.MaxWait,
		RobotsTTL:     cfg.Gate.RobotsTTL,
		RespectRobots: cfg.Gate.RespectRobots,
		UserAgent:     cfg.Gate.UserAgent,
		Disallow:      cfg.Gate.Disallow,
	})

	adapters, err := source.Build(cfg.Sources, source.Deps{
		Gate:   g,
		Logger: log.New(log.Writer(), "[SOURCE] ", log.LstdFlags),
	})
	if err != nil {
		return nil, err
	}

	return research.NewEngine(adapters, research.Options{
		AdapterTimeout:      cfg.Research.AdapterTimeout,
		OverallTimeout:      cfg.Research.OverallTimeout,
		Kinds:               source.Kinds(),
		SimilarityThreshold: cfg.Research.SimilarityThreshold,
		Weights: research.ScoreWeights{
			TermOverlap:    cfg.Research.Scoring.TermOverlap,
			Recency:        cfg.Research.Scoring.Recency,
			SourcePriority: cfg.Research.Scoring.SourcePriority,
		},
		Metrics: metrics,
	})
}
