package workq

import (
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DefaultCapacity is the queue capacity used when Config.Capacity is zero.
const DefaultCapacity = 256

// Config holds configuration for a worker pool.
type Config struct {
	// Capacity is the task queue capacity. Zero selects DefaultCapacity.
	Capacity int `mapstructure:"capacity" validate:"gte=0"`
	// Workers is the number of worker goroutines. Zero selects
	// runtime.NumCPU().
	Workers int `mapstructure:"workers" validate:"gte=0"`
}

var validate = validator.New()

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	return errors.Wrap(validate.Struct(c), "invalid worker pool config")
}

func (c Config) withDefaults() Config {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}
