// Package app assembles the fx modules that make up the EasySign service.
package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"easysign/internal/config"
	deliveryhttp "easysign/internal/delivery/http"
	"easysign/internal/domain/coords"
	"easysign/internal/infrastructure/auth"
	"easysign/internal/infrastructure/database"
	"easysign/internal/infrastructure/lock"
	"easysign/internal/infrastructure/logger"
	"easysign/internal/infrastructure/mailer"
	"easysign/internal/infrastructure/pdf"
	"easysign/internal/infrastructure/redis"
	"easysign/internal/infrastructure/repository"
	"easysign/internal/infrastructure/storage"
	"easysign/internal/server"
	"easysign/internal/usecase"
)

var Modules = fx.Options(
	// Configuration
	config.Module,

	// Infrastructure
	logger.Module,
	database.Module,
	redis.Module,
	repository.Module,
	storage.Module,
	pdf.Module,
	lock.Module,
	mailer.Module,
	auth.Module,

	// Domain
	coords.Module,

	// Business Logic
	usecase.Module,

	// Delivery
	deliveryhttp.Module,

	// Server
	server.Module,

	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
)
