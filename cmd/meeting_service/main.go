package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MeetMind/internal/api"
	"MeetMind/internal/config"
	"MeetMind/internal/database/kafka"
	"MeetMind/internal/database/milvus"
	"MeetMind/internal/database/neo4j"
	"MeetMind/internal/database/redis"
	"MeetMind/internal/embedding"
	"MeetMind/internal/llm"
	"MeetMind/internal/memory/consumer"
	"MeetMind/internal/memory/extractor"
	"MeetMind/internal/memory/service"
	"MeetMind/internal/memory/store"
	"MeetMind/internal/query"
	"MeetMind/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	configPath := os.Getenv("MEETMIND_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("meeting_service", "")

	// Initialize database clients
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer milvusClient.Close()
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		appLogger.Fatal(err.Error())
	}

	neo4jClient, err := neo4j.GetClient(ctx, &cfg.Databases.Neo4j)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer neo4jClient.Close(ctx)

	redisClient, err := redis.GetClient(&cfg.Databases.Redis)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer redis.Close()

	kafkaClient, err := kafka.GetClient(&cfg.Databases.Kafka)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer kafkaClient.Close()

	// Initialize embedding and LLM clients
	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		appLogger.Fatal(err.Error())
	}

	// Initialize stores
	vecStore := store.NewMilvusStore(milvusClient, embedder)
	graphStore := store.NewNeo4jStore(neo4jClient)

	// Initialize the ingestion pipeline and the query side
	hub := api.NewProgressHub(appLogger)
	ext := extractor.NewLLMExtractor(llmClient, appLogger)
	memoryService := service.NewMemoryService(ext, vecStore, graphStore, redisClient, hub, cfg.Engine, appLogger)
	orchestrator := query.NewOrchestrator(memoryService, query.NewLLMAnswerer(llmClient), appLogger)

	// Start the Kafka consumer for asynchronous ingestion
	kafkaConsumer := consumer.NewKafkaConsumer(kafkaClient, memoryService, appLogger)
	kafkaConsumer.Start(ctx)

	// Set up the HTTP surface
	health := map[string]api.HealthChecker{
		"milvus": milvusClient.HealthCheck,
		"neo4j":  neo4jClient.HealthCheck,
		"redis":  redis.HealthCheck,
		"kafka":  kafkaClient.HealthCheck,
	}
	handler := api.NewHandler(memoryService, orchestrator, kafkaClient, health, appLogger)
	router := api.SetupRouter(handler, hub, cfg.Middleware)

	listenAddr := cfg.App.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	server := &http.Server{Addr: listenAddr, Handler: router}

	go func() {
		appLogger.Info("Meeting service listening on " + listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err.Error())
		}
	}()

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutting down meeting service")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err.Error())
	}
	appLogger.Info("Meeting service stopped")
}
