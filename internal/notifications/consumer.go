package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	RetryBackoffMs   int
	OffsetOldest     bool
	MaxRetries       int
	RetryBackoff     time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "inviteform-audit",
		Topics:           []string{"guests-registered"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		RetryBackoffMs:   100,
		OffsetOldest:     true,
		MaxRetries:       3,
		RetryBackoff:     time.Second,
	}
}

// KafkaConsumer feeds submission events from Kafka into a Handler
type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       Handler
	wg            sync.WaitGroup
}

func NewKafkaConsumer(config *ConsumerConfig, handler Handler) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
	}, nil
}

// Start runs numWorkers consume loops until ctx is cancelled
func (kc *KafkaConsumer) Start(ctx context.Context, numWorkers int) {
	log.Printf("📥 Starting %d submission consumer workers for topics: %v", numWorkers, kc.config.Topics)

	go kc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		kc.wg.Add(1)
		go func(workerID int) {
			defer kc.wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}
}

func (kc *KafkaConsumer) runWorker(ctx context.Context, workerID int) {
	groupHandler := &consumerGroupHandler{
		workerID:  workerID,
		processor: newProcessor(kc.handler, kc.config.MaxRetries, kc.config.RetryBackoff),
	}

	for {
		if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, groupHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			log.Printf("📥 Worker %d error consuming messages: %v", workerID, err)
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			log.Printf("📥 Worker %d shutting down", workerID)
			return
		}
	}
}

func (kc *KafkaConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		log.Printf("📥 Consumer group error: %v", err)
	}
}

// Stop closes the group and waits for the workers
func (kc *KafkaConsumer) Stop() error {
	log.Println("📥 Stopping submission consumer...")
	err := kc.consumerGroup.Close()
	kc.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	log.Println("📥 Submission consumer stopped")
	return nil
}

type consumerGroupHandler struct {
	workerID  int
	processor *processor
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session started", h.workerID)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session ended", h.workerID)
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processor.process(session.Context(), message); err != nil {
				log.Printf("📥 Worker %d: Error processing message: %v", h.workerID, err)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// processor decodes messages and retries the handler with exponential backoff
type processor struct {
	handler    Handler
	maxRetries int
	backoff    time.Duration
}

func newProcessor(handler Handler, maxRetries int, backoff time.Duration) *processor {
	return &processor{handler: handler, maxRetries: maxRetries, backoff: backoff}
}

func (p *processor) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := FromJSON(message.Value)
	if err != nil {
		// Poison messages are skipped, not retried
		log.Printf("📥 Dropping undecodable message at offset %d: %v", message.Offset, err)
		return nil
	}

	for attempt := 0; ; attempt++ {
		err := p.handler.HandleSubmissionEvent(ctx, event)
		if err == nil {
			return nil
		}
		if attempt >= p.maxRetries {
			return fmt.Errorf("event %s failed after %d attempts: %w", event.ID, attempt+1, err)
		}

		delay := p.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
