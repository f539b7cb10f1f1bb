package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/domain/entity"
)

var kindStatus = map[entity.ErrorKind]int{
	entity.KindValidation:             fiber.StatusBadRequest,
	entity.KindNotFound:               fiber.StatusNotFound,
	entity.KindCorruptFormat:          fiber.StatusUnprocessableEntity,
	entity.KindUnsupportedImageFormat: fiber.StatusUnprocessableEntity,
	entity.KindUpstreamFailure:        fiber.StatusBadGateway,
	entity.KindConflict:               fiber.StatusConflict,
	entity.KindUnauthorized:           fiber.StatusUnauthorized,
	entity.KindInternal:               fiber.StatusInternalServerError,
}

// respondError writes the error envelope for err. Only the kind and the safe
// message reach the client; the cause is logged.
func respondError(c *fiber.Ctx, logger *zap.Logger, action string, err error) error {
	var appErr *entity.AppError
	if !errors.As(err, &appErr) {
		appErr = entity.NewInternalError("internal server error", err)
	}

	status, ok := kindStatus[appErr.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("path", c.Path()),
		zap.String("kind", string(appErr.Kind)),
		zap.Error(err),
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error(action, fields...)
	} else {
		logger.Warn(action, fields...)
	}

	return c.Status(status).JSON(entity.NewErrorResponse(appErr.Kind, appErr.Message))
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(
		entity.NewErrorResponse(entity.KindValidation, message),
	)
}
