package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Publisher hands submission events to whoever records them
type Publisher interface {
	Publish(ctx context.Context, event *SubmissionEvent) error
	Close() error
}

// Handler consumes submission events
type Handler interface {
	HandleSubmissionEvent(ctx context.Context, event *SubmissionEvent) error
}

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "guests-registered",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// NewSaramaConfig builds the sarama producer settings for config
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one registration code in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes submission events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a sync producer to the brokers
func NewKafkaPublisher(config *KafkaProducerConfig) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("📤 Kafka submission producer created for topic %s", config.Topic)
	return NewKafkaPublisherWithProducer(producer, config.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends one event, keyed by registration code
func (kp *KafkaPublisher) Publish(ctx context.Context, event *SubmissionEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal submission event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send submission event to Kafka: %w", err)
	}

	log.Printf("📤 Submission event published - Topic: %s, Partition: %d, Offset: %d, Outcome: %s",
		kp.topic, partition, offset, event.Outcome)
	return nil
}

func createHeaders(event *SubmissionEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("outcome"), Value: []byte(event.Outcome)},
		{Key: []byte("content_type"), Value: []byte("application/json")},
	}
}

// Close closes the underlying producer
func (kp *KafkaPublisher) Close() error {
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// DirectPublisher hands events straight to a handler, used when Kafka is off
type DirectPublisher struct {
	handler Handler
}

func NewDirectPublisher(handler Handler) *DirectPublisher {
	return &DirectPublisher{handler: handler}
}

func (dp *DirectPublisher) Publish(ctx context.Context, event *SubmissionEvent) error {
	return dp.handler.HandleSubmissionEvent(ctx, event)
}

func (dp *DirectPublisher) Close() error { return nil }

// NopPublisher drops events; used when nothing records them
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *SubmissionEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
