package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tendertriage/analysis"
	"tendertriage/dedup"
	"tendertriage/kafka"
	"tendertriage/orchestrator"
	"tendertriage/types"

	"github.com/joho/godotenv"
)

// Consumes notices from a Kafka topic and triages each one against the store.
// Sources that push notices (instead of exposing a feed) publish here.
func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	brokers := strings.Split(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getEnvOrDefault("KAFKA_TOPIC", "tender-notices")
	groupID := getEnvOrDefault("KAFKA_GROUP_ID", "tendertriage")

	store, err := dedup.NewRedisStore(dedup.RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("failed to connect to notice store: %v", err)
	}
	defer store.Close()

	analyzer := analysis.NewDefaultAnalyzer(os.Getenv("ANALYSIS_MODEL"))
	if analyzer == nil {
		log.Println("Analyzer not configured; notices will be triaged without briefings")
	}

	pipeline := orchestrator.NewPipeline(store, analyzer, nil)
	handler := &kafka.NoticeHandler{
		Triage: func(ctx context.Context, record *types.CanonicalRecord) error {
			result, err := pipeline.TriageOne(ctx, record)
			if err != nil {
				return err
			}
			log.Printf("Notice %s: %s", record.ID, result.Status)
			return nil
		},
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		Handler: handler,
	})
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("failed to start consumer: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down consumer...")
	cancel()
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
