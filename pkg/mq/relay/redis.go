package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"
)

const (
	defaultRedisDialTimeout  = 5 // Seconds
	defaultRedisReadTimeout  = 3
	defaultRedisWriteTimeout = 3
	defaultRedisMaxRetries   = 3
)

// RedisConfig is the configuration for a RedisSink.
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	Database     int    `mapstructure:"database"`
	Key          string `mapstructure:"key"` // destination list key
	DialTimeout  int    `mapstructure:"dial_timeout"`  // Seconds
	ReadTimeout  int    `mapstructure:"read_timeout"`  // Seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // Seconds
	MaxRetries   int    `mapstructure:"max_retries"`
}

// RedisSink appends handles to a Redis list with RPUSH, so list order
// matches queue order.
type RedisSink[T any] struct {
	client *redisV9.Client
	key    string
	encode Encoder[T]
}

var _ Sink[int] = (*RedisSink[int])(nil)

// NewRedisSink connects to Redis and verifies the connection with a ping.
// A nil encode selects JSONEncoder.
func NewRedisSink[T any](cfg RedisConfig, encode Encoder[T]) (*RedisSink[T], error) {
	if cfg.Key == "" {
		return nil, errors.New("redis sink requires a destination key")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultRedisDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultRedisReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultRedisWriteTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultRedisMaxRetries
	}
	if encode == nil {
		encode = JSONEncoder[T]()
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", addr, cfg.Port)
	}

	client := redisV9.NewClient(&redisV9.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	// Ping test
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrPingFailed, err)
	}

	return &RedisSink[T]{
		client: client,
		key:    cfg.Key,
		encode: encode,
	}, nil
}

// Write appends the batch to the destination list in one RPUSH call.
func (s *RedisSink[T]) Write(ctx context.Context, batch []T) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(batch))
	for _, handle := range batch {
		payload, err := s.encode(handle)
		if err != nil {
			return errors.Wrap(err, "failed to encode handle")
		}
		values = append(values, payload)
	}
	return errors.Wrap(s.client.RPush(ctx, s.key, values...).Err(), "failed to push batch")
}

// Close closes the Redis client.
func (s *RedisSink[T]) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Client returns the underlying redis client (Escape hatch)
func (s *RedisSink[T]) Client() *redisV9.Client {
	return s.client
}
