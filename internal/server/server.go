package server

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/delivery/http/router"
)

func NewServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	r *router.Router,
	logger *zap.Logger,
) error {
	app := r.Setup()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", cfg.App.Port)
			logger.Info("Starting EasySign API",
				zap.String("address", addr),
				zap.String("env", cfg.App.Env),
				zap.String("storage", cfg.Storage.Driver),
				zap.String("version", config.Version),
			)

			go func() {
				if err := app.Listen(addr); err != nil {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down EasySign API")
			return app.ShutdownWithContext(ctx)
		},
	})

	return nil
}
