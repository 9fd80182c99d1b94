package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-loyalty-service/pkg/audit"
	"github.com/medreza/honcho-loyalty-service/pkg/config"
	"github.com/medreza/honcho-loyalty-service/pkg/database"
	"github.com/medreza/honcho-loyalty-service/pkg/handlers"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/metrics"
	"github.com/medreza/honcho-loyalty-service/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogging()

	ctx := context.Background()

	var store ledger.Store
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("Using in-memory store, data is lost on exit")
		store = ledger.NewMemoryStore()
	default:
		pool, err := database.InitDB(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer pool.Close()
		store = repository.NewLedgerStore(pool)
	}

	var sink audit.Sink = audit.NewLogSink(log.StandardLogger())
	if cfg.MongoURI != "" {
		mongoSink, err := audit.NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize audit store: %v", err)
		}
		defer mongoSink.Close(context.Background())
		sink = mongoSink
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics, err := metrics.NewLedger(reg)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	svc := ledger.NewService(store, ledger.Config{
		PointValue:           cfg.PointValue,
		PointsLifetimeMonths: cfg.PointsLifetimeMonths,
	}, ledger.WithAuditSink(sink), ledger.WithMetrics(ledgerMetrics))

	sweeper, err := ledger.NewSweeper(svc, cfg.SweepSchedule, cfg.SweepTimeout)
	if err != nil {
		log.Fatalf("Failed to schedule expiry sweep: %v", err)
	}
	sweeper.Start()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), httpMetrics.Middleware())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.Register(router, svc, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start service: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sweeper.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Service forced to shutdown: %v", err)
	}

	log.Info("Service exited")
}
