// Package store implements core.DocumentStore backends.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Coedit/internal/config"
	"github.com/dkeye/Coedit/internal/core"
)

// Open builds the configured backend, wrapped in a read cache when
// cache_size is positive.
func Open(ctx context.Context, cfg config.StoreConfig) (core.DocumentStore, error) {
	var (
		backend core.DocumentStore
		err     error
	)
	switch cfg.Driver {
	case "memory", "":
		backend = NewMemory()
	case "redis":
		backend, err = NewRedis(ctx, cfg)
	case "postgres":
		backend, err = NewGorm(cfg.DSN)
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "store").Str("driver", cfg.Driver).Int("cache_size", cfg.CacheSize).Msg("document store ready")
	if cfg.CacheSize > 0 && cfg.Driver != "memory" && cfg.Driver != "" {
		return NewCached(backend, cfg.CacheSize)
	}
	return backend, nil
}
