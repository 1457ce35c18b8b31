package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limasantoss/marketplace-dash/config"
	"github.com/limasantoss/marketplace-dash/internal/api"
	"github.com/limasantoss/marketplace-dash/internal/broker"
	"github.com/limasantoss/marketplace-dash/internal/redisclient"
	"github.com/limasantoss/marketplace-dash/internal/service"
	"github.com/limasantoss/marketplace-dash/internal/store"
	"github.com/limasantoss/marketplace-dash/internal/util"
	"github.com/limasantoss/marketplace-dash/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace insights service")

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	loc, err := time.LoadLocation(cfg.Data.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Data.Timezone, err)
	}

	var loader store.Loader
	switch cfg.Data.Source {
	case config.DataSourcePostgres:
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Database connected")
		loader = store.PostgresLoader(db, loc, cfg.Data.DropUndelivered)
	case config.DataSourceCSV:
		loader = store.CSVFileLoader(cfg.Data.CSVPath, store.CSVOptions{
			Location:        loc,
			DropUndelivered: cfg.Data.DropUndelivered,
		})
	default:
		log.Fatalf("Unknown data source %q", cfg.Data.Source)
	}

	records := store.NewRecordStore(loader)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	dataset, err := records.Records(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatalf("Failed to load order records: %v", err)
	}
	logger.Info("Order records loaded", zap.Int("records", dataset.Len()))

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisclient.SessionOptions{
		TTL:         cfg.Session.TTL,
		MaxMessages: cfg.Session.MaxMessages,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	insightsProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicInsights)
	defer insightsProducer.Close()
	questionsProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicQuestions)
	defer questionsProducer.Close()
	log.Println("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(insightsProducer, questionsProducer)

	insightService := service.NewInsightService(records, redisClient, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	questionConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicQuestions, cfg.Kafka.ConsumerGroup)
	questionWorker := worker.NewQuestionWorker(questionConsumer, insightService, redisClient)
	go func() {
		if err := questionWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Question worker error: %v", err)
		}
	}()

	limiter := api.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiter.Run(workerCtx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(insightService, limiter,
		api.ReadinessCheck{Name: "records", Check: func(ctx context.Context) error {
			if !records.Loaded() {
				return fmt.Errorf("order records not loaded")
			}
			return nil
		}},
		api.ReadinessCheck{Name: "redis", Check: redisClient.Ping},
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	var metricsSrv *http.Server
	if port := cfg.Observ.PrometheusPort; port != "" && port != cfg.Server.Port {
		metricsSrv = api.NewMetricsServer(port)
		go func() {
			log.Printf("Starting metrics server on port %s", port)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	workerCancel()
	if err := questionWorker.Stop(); err != nil {
		log.Printf("Error stopping question worker: %v", err)
	}

	log.Println("Server exited")
}
