package main // Entry point package

import (
	stdlog "log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/config"
	"github.com/jagatstore/jagat-backend/internal/handler"
	"github.com/jagatstore/jagat-backend/internal/logger"
	"github.com/jagatstore/jagat-backend/internal/middleware"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/router"
	"github.com/jagatstore/jagat-backend/internal/service"
	"github.com/jagatstore/jagat-backend/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "jagat-backend")
	if err != nil {
		stdlog.Fatal(err)
	}
	defer log.Sync()

	st := store.New(log)
	st.Report = func(err error) {
		// The save already fell back to a placeholder; this is the alarm
		// channel for the data that placeholder dropped.
		log.Error("persistence fallback engaged, data lost", zap.Error(err))
	}

	users := repository.NewUserRepo(st, cfg.DataDir)
	payments := repository.NewPaymentRepo(st, cfg.DataDir)
	ledger := repository.NewLedgerRepo(st, cfg.DataDir)
	visitors := repository.NewVisitorRepo(st, cfg.DataDir)
	newsletter := repository.NewNewsletterRepo(st, cfg.DataDir)
	contacts := repository.NewContactRepo(st, cfg.DataDir)

	reconciler := service.NewReconciler(payments, users, ledger, log)
	geo := service.NewGeoIPClient(cfg.GeoAPIBase, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover()) // unexpected panics become plain 500s
	e.Use(echomw.CORS())
	e.Use(middleware.VisitorTracker(cfg.TrackPath, visitors, geo, log))
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	api := router.API{
		Auth:       handler.NewAuthHandler(cfg, users, log),
		Payments:   handler.NewPaymentHandler(cfg, payments, users, reconciler, log),
		Visitors:   handler.NewVisitorHandler(visitors, log),
		Engagement: handler.NewEngagementHandler(newsletter, contacts, log),
	}
	router.Register(e, api, cfg, limiter)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
		zap.String("data_dir", cfg.DataDir))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
