package lock

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/infrastructure/redis"
)

type lockerParams struct {
	fx.In

	Config *config.Config
	Redis  *redis.RedisClient
	Logger *zap.Logger
}

func NewLocker(p lockerParams) (Locker, error) {
	switch p.Config.Lock.Driver {
	case config.LockDriverRedis, "":
		p.Logger.Info("Using redis document locks",
			zap.Duration("ttl", p.Config.Lock.TTL),
			zap.Duration("wait", p.Config.Lock.Wait),
		)
		return NewRedisLocker(p.Redis, p.Config.Lock.TTL, p.Config.Lock.Wait, p.Logger), nil
	case config.LockDriverMemory:
		p.Logger.Warn("Using in-process document locks, not safe across instances")
		return NewMemoryLocker(p.Config.Lock.Wait), nil
	default:
		return nil, fmt.Errorf("unknown lock driver %q", p.Config.Lock.Driver)
	}
}

var Module = fx.Module("lock",
	fx.Provide(NewLocker),
)
