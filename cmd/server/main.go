package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/founder-copilot/internal/chatcontext"
	"github.com/iliyamo/founder-copilot/internal/config"
	"github.com/iliyamo/founder-copilot/internal/database"
	"github.com/iliyamo/founder-copilot/internal/handler"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/middleware"
	"github.com/iliyamo/founder-copilot/internal/payment"
	"github.com/iliyamo/founder-copilot/internal/queue"
	"github.com/iliyamo/founder-copilot/internal/repository"
	"github.com/iliyamo/founder-copilot/internal/router"
	"github.com/iliyamo/founder-copilot/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal("open database", "error", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, database.DialectMySQL); err != nil {
		log.Fatal("migrate database", "error", err)
	}

	// Redis is optional: rate limiting and the insights cache pass through
	// without it.
	var rdb *redis.Client
	if c, err := config.NewRedisClient(ctx); err != nil {
		log.Warn("redis unavailable, rate limit and cache disabled", "error", err)
	} else {
		rdb = c
		defer rdb.Close()
	}

	// Queue
	var events payment.Publisher = queue.Discard{}
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, log)
		go func() {
			if err := queue.StartBillingConsumer(ctx, cfg.Queue.URL, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("billing consumer stopped", "error", err)
			}
		}()
	}

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		log.Warn("secrets not configured; dependent endpoints will answer 500", "missing", strings.Join(missing, ","))
	}

	// Repos
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	ideas := repository.NewIdeaRepo(db)
	roadmaps := repository.NewRoadmapRepo(db)
	decisions := repository.NewDecisionRepo(db)
	metrics := repository.NewMetricRepo(db)
	reviews := repository.NewReviewRepo(db)
	messages := repository.NewChatRepo(db)
	orders := repository.NewPaymentOrderRepo(db)

	// Services
	gateway := llm.NewGateway(cfg.LLM, log)
	assembler := &chatcontext.Assembler{
		Profiles:  profiles,
		Ideas:     ideas,
		Decisions: decisions,
		Metrics:   metrics,
		Messages:  messages,
		Log:       log,
	}
	chat := &service.ChatService{Messages: messages, Assembler: assembler, Gateway: gateway, Log: log}
	validation := &service.IdeaService{Ideas: ideas, Gateway: gateway, Log: log}
	roadmapSvc := &service.RoadmapService{Ideas: ideas, Roadmaps: roadmaps, Gateway: gateway, Log: log}
	reviewSvc := &service.ReviewService{
		Profiles:  profiles,
		Decisions: decisions,
		Metrics:   metrics,
		Messages:  messages,
		Reviews:   reviews,
		Gateway:   gateway,
		Log:       log,
	}
	insightSvc := &service.InsightService{
		Profiles:  profiles,
		Ideas:     ideas,
		Roadmaps:  roadmaps,
		Metrics:   metrics,
		Reviews:   reviews,
		Completer: gateway,
		Log:       log,
	}
	payments := &payment.Service{
		Orders:    orders,
		Profiles:  profiles,
		Provider:  payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL),
		Events:    events,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Log:       log,
	}

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))

	guards := router.Guards{
		JWTSecret: cfg.JWTSecret,
		Profiles:  profiles,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
		Log:       log,
	}
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterFounder(e, handler.NewFounderHandler(handler.FounderDeps{
		Profiles:   profiles,
		Ideas:      ideas,
		Decisions:  decisions,
		Metrics:    metrics,
		Validation: validation,
		Roadmaps:   roadmapSvc,
		Reviews:    reviewSvc,
		Insights:   insightSvc,
		Log:        log,
	}), handler.NewChatHandler(gateway, chat, log), guards)
	router.RegisterBilling(e, handler.NewBillingHandler(payments, profiles, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
