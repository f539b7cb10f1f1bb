package mailer

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/infrastructure/redis"
)

type outboxParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Redis     *redis.RedisClient
	Logger    *zap.Logger
}

func NewSender(cfg *config.Config, logger *zap.Logger) Sender {
	if !cfg.Mail.Enabled {
		logger.Warn("Mail delivery disabled, invitations will only be logged")
		return NewLogSender(logger)
	}
	return NewSMTPSender(&cfg.Mail, logger)
}

func NewOutbox(p outboxParams, sender Sender) (Outbox, error) {
	mail := p.Config.Mail

	var d *Dispatcher
	switch mail.Outbox {
	case "redis", "":
		d = NewRedisDispatcher(p.Redis, sender, mail.Workers, mail.MaxAttempts, p.Logger)
	case "memory":
		d = NewMemoryDispatcher(sender, mail.Workers, mail.MaxAttempts, 0, p.Logger)
	default:
		return nil, fmt.Errorf("unknown mail outbox %q", mail.Outbox)
	}
	d.SetRetryDelay(mail.RetryDelay)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})

	return d, nil
}

var Module = fx.Module("mailer",
	fx.Provide(NewSender),
	fx.Provide(NewOutbox),
)
