package ocr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spherical/question-agent/internal/observability"
)

// Cache holds one engine per configuration for its whole lifetime.
type Cache struct {
	mu      sync.Mutex
	factory Factory
	engines map[string]Engine
	logger  *observability.Logger
}

// NewCache creates an empty cache that builds engines with factory.
func NewCache(factory Factory, logger *observability.Logger) *Cache {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Cache{
		factory: factory,
		engines: make(map[string]Engine),
		logger:  logger.WithComponent("ocr-cache"),
	}
}

// Get returns the engine for cfg, building it on first use. A failed build is
// not cached, so the next call tries again.
func (c *Cache) Get(cfg EngineConfig) (Engine, error) {
	key := cfg.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.engines[key]; ok {
		return e, nil
	}

	e, err := c.factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("build ocr engine %s: %w", key, err)
	}
	c.engines[key] = e

	c.logger.Info().
		Str("engine", e.Name()).
		Strs("languages", cfg.Languages).
		Bool("accelerator", cfg.UseAccelerator).
		Msg("ocr engine initialized")

	return e, nil
}

// Len returns the number of built engines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.engines)
}

// Close releases every engine and empties the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, e := range c.engines {
		if err := e.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
		delete(c.engines, key)
	}
	return errors.Join(errs...)
}
