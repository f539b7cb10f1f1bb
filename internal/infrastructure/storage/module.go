package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"easysign/internal/config"
)

// NewStore builds the Store selected by storage.driver
func NewStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (Store, error) {
	remote := NewHTTPFetcher(cfg.Storage.FetchTimeout, logger)

	switch cfg.Storage.Driver {
	case config.StorageDriverLocal, "":
		return NewLocalStore(cfg, remote, logger)
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, files are lost on restart")
		return NewMemoryStore(remote), nil
	case config.StorageDriverGCS:
		store, err := NewGCSStore(context.Background(), cfg, remote, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

var Module = fx.Module("storage",
	fx.Provide(NewStore),
)
