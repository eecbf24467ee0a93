package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"invoiceapi/internal/config"
)

const publishTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by upload key.
type KafkaPublisher struct {
	writer  messageWriter
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, cfg.Topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		writer:  w,
		logger:  logger.With("component", "kafka-producer", "topic", topic),
		timeout: publishTimeout,
	}
}

// Publish serializes ev and writes it in the background.
func (p *KafkaPublisher) Publish(ctx context.Context, ev InvoiceProcessed) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal event", "upload_key", ev.UploadKey, "error", err)
		return
	}
	msg := kafka.Message{Key: []byte(ev.UploadKey), Value: value}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error("failed to publish message", "key", ev.UploadKey, "error", err)
			return
		}
		p.logger.Debug("message published", "key", ev.UploadKey, "value_size", len(value))
	}()
}

// Close waits for in-flight publishes, then closes the writer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}
