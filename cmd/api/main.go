package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/bookkeeper/internal/auth"
	"github.com/nimasrn/bookkeeper/internal/config"
	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/handlers"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/nimasrn/bookkeeper/internal/services"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/nimasrn/bookkeeper/pkg/prom"
	"github.com/nimasrn/bookkeeper/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.IsDev())
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	var (
		publisher events.Publisher      = events.NopPublisher{}
		cache     services.SummaryCache = services.NopSummaryCache{}
		redisPing services.Pinger
	)
	if cfg.RedisEnabled() {
		redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.Redis())
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		q, err := queue.NewQueue(redisAdap, cfg.Queue())
		if err != nil {
			logger.Error("failed creating queue", "error", err)
			return
		}
		publisher = events.NewQueuePublisher(q)
		cache = services.NewRedisSummaryCache(redisAdap, cfg.SummaryCacheTTL)
		redisPing = redisAdap
	} else {
		logger.Warn("REDIS_ADDR is empty, ledger events and the summary cache are disabled")
	}

	if cfg.AppDebugMetricsAddr != "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	// repositories
	storeRepo := repository.NewStoreRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	tokens := auth.NewTokenIssuer(cfg.JwtSecret, cfg.JwtTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// services
	authService := services.NewAuthService(storeRepo, hasher, tokens)
	storeService := services.NewStoreService(storeRepo, hasher)
	customerService := services.NewCustomerService(customerRepo)
	transactionService := services.NewTransactionService(transactionRepo, customerRepo, publisher)
	invoiceService := services.NewInvoiceService(db, invoiceRepo, customerRepo, transactionRepo, publisher, cache, cfg.InvoiceNumberAttempts)
	healthService := services.NewHealthService(db, redisPing)

	// transport
	errorsOpt := handlers.WithInternalErrors(cfg.IsDev())
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(cfg.AllowedOrigins()))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Use(xhttp.CompressMiddleware(6))

	guard := auth.Middleware(tokens)
	g := s.Router.Group("/api")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))
	handlers.RegisterAuthRoutes(g, handlers.NewAuthHandler(authService, storeService, errorsOpt), guard)
	handlers.RegisterCustomerRoutes(g, handlers.NewCustomerHandler(customerService, errorsOpt), guard)
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(transactionService, errorsOpt), guard)
	handlers.RegisterInvoiceRoutes(g, handlers.NewInvoiceHandler(invoiceService, errorsOpt), guard)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
			c <- syscall.SIGTERM
		}
	}()

	<-c
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.Shutdown(ctx)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file", "error", err)
				return ""
			}
			return s[1]
		}
	}
	return ""
}
