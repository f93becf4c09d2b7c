package relay

import (
	"context"

	"github.com/sugawarayuuta/sonnet"
)

// Sink is the destination side of a relay. Implementations deliver a batch
// of handles to some external system.
type Sink[T any] interface {
	// Write delivers a batch of handles. Returning an error means the
	// whole batch is considered undelivered.
	Write(ctx context.Context, batch []T) error
}

// Encoder serializes a single handle for sinks that ship bytes.
type Encoder[T any] func(handle T) ([]byte, error)

// JSONEncoder returns the default Encoder, serializing handles as JSON.
func JSONEncoder[T any]() Encoder[T] {
	return func(handle T) ([]byte, error) {
		return sonnet.Marshal(handle)
	}
}

// Config holds configuration for a Relay.
type Config struct {
	// BatchSize is the number of handles moved per sink write.
	// When a drain finds more handles queued, it writes several batches.
	BatchSize int `mapstructure:"batch_size"`
}
