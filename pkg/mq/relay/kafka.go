package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const (
	defaultKafkaTimeout    = 10 // Seconds
	defaultKafkaMaxRetries = 3
)

// KafkaConfig is the configuration for a KafkaSink.
type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	Topic      string   `mapstructure:"topic"`
	Timeout    int      `mapstructure:"timeout"`     // Seconds
	MaxRetries int      `mapstructure:"max_retries"` // Number of retries
}

// KafkaSink delivers handles to a Kafka topic, one message per handle,
// serialized by the configured Encoder.
type KafkaSink[T any] struct {
	producer sarama.SyncProducer
	topic    string
	encode   Encoder[T]
}

var _ Sink[int] = (*KafkaSink[int])(nil)

// NewKafkaSink connects a synchronous producer to the configured brokers.
// A nil encode selects JSONEncoder.
func NewKafkaSink[T any](cfg KafkaConfig, encode Encoder[T]) (*KafkaSink[T], error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka sink requires a topic")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultKafkaTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultKafkaMaxRetries
	}

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = cfg.MaxRetries
	sc.Producer.Timeout = time.Duration(cfg.Timeout) * time.Second
	// SyncProducer requires success returns
	sc.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	return NewKafkaSinkFromProducer(producer, cfg.Topic, encode), nil
}

// NewKafkaSinkFromProducer wraps an existing producer. Used by tests with
// a mock producer and by callers that manage the producer themselves.
func NewKafkaSinkFromProducer[T any](producer sarama.SyncProducer, topic string, encode Encoder[T]) *KafkaSink[T] {
	if encode == nil {
		encode = JSONEncoder[T]()
	}
	return &KafkaSink[T]{
		producer: producer,
		topic:    topic,
		encode:   encode,
	}
}

// Write produces the batch to the topic. All messages are sent in a single
// producer call; an error means none of the batch should be considered
// delivered.
func (s *KafkaSink[T]) Write(ctx context.Context, batch []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(batch))
	for _, handle := range batch {
		payload, err := s.encode(handle)
		if err != nil {
			return errors.Wrap(err, "failed to encode handle")
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: s.topic,
			Value: sarama.ByteEncoder(payload),
		})
	}
	return errors.Wrap(s.producer.SendMessages(msgs), "failed to produce batch")
}

// Close closes the underlying producer.
func (s *KafkaSink[T]) Close() error {
	return s.producer.Close()
}

// Producer returns the underlying sarama producer (Escape hatch)
func (s *KafkaSink[T]) Producer() sarama.SyncProducer {
	return s.producer
}
