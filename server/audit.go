package main

import (
	"context"
	"log/slog"
	"time"

	"inviteform/internal/notifications"
	"inviteform/internal/shared/config"
	"inviteform/internal/shared/database"
	"inviteform/internal/submissions"
	"inviteform/pkg/logger"
)

// Audit bundles the submission audit log and how events reach it
type Audit struct {
	Submissions submissions.Service
	Publisher   notifications.Publisher
	consumer    *notifications.KafkaConsumer
	logger      *logger.Logger
}

// setupAudit wires the publisher the registration flow uses. Without
// Postgres there is nowhere to record events and a no-op publisher is used.
func setupAudit(ctx context.Context, cfg *config.Config, db *database.DB, log *logger.Logger) *Audit {
	a := &Audit{Publisher: notifications.NopPublisher{}, logger: log}

	if db.GetPostgreSQL() == nil {
		log.Info("ℹ️ Audit log disabled (DB_ENABLED=false)")
		return a
	}

	var uploader submissions.Uploader
	if cfg.S3ExportEnabled() {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		s3Uploader, err := submissions.NewS3Uploader(initCtx, cfg.AWS)
		cancel()
		if err != nil {
			log.Error("Failed to initialize S3 uploader, exports disabled", slog.Any("error", err))
		} else {
			uploader = s3Uploader
			log.Info("✅ Submission exports enabled", slog.String("bucket", cfg.AWS.S3Bucket))
		}
	}

	a.Submissions = submissions.NewService(submissions.NewRepository(db.GetPostgreSQL()), uploader, cfg.AWS.S3Prefix, log)
	a.Publisher = notifications.NewDirectPublisher(a.Submissions)

	if !cfg.Kafka.Enabled {
		return a
	}

	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.Topic

	publisher, err := notifications.NewKafkaPublisher(producerConfig)
	if err != nil {
		log.Error("Failed to create Kafka publisher, recording submissions directly", slog.Any("error", err))
		return a
	}

	consumerConfig := notifications.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.Topic}
	consumerConfig.GroupID = cfg.Kafka.GroupID

	consumer, err := notifications.NewKafkaConsumer(consumerConfig, a.Submissions)
	if err != nil {
		log.Error("Failed to create Kafka consumer, recording submissions directly", slog.Any("error", err))
		publisher.Close()
		return a
	}

	workers := cfg.Kafka.Workers
	if workers < 1 {
		workers = 1
	}
	consumer.Start(ctx, workers)

	a.Publisher = publisher
	a.consumer = consumer
	log.Info("✅ Submission events flowing through Kafka",
		slog.String("topic", cfg.Kafka.Topic),
		slog.Int("workers", workers),
	)
	return a
}

// Close stops the consumer before the producer
func (a *Audit) Close() {
	if a.consumer != nil {
		a.logger.Info("Stopping submission consumer...")
		if err := a.consumer.Stop(); err != nil {
			a.logger.Error("Error stopping submission consumer", slog.Any("error", err))
		}
	}
	if err := a.Publisher.Close(); err != nil {
		a.logger.Error("Error closing publisher", slog.Any("error", err))
	}
}
