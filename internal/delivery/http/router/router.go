package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/delivery/http/handler"
	"easysign/internal/delivery/http/middleware"
	"easysign/internal/domain/entity"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	auth             *middleware.AuthMiddleware
	healthHandler    *handler.HealthHandler
	documentHandler  *handler.DocumentHandler
	annotateHandler  *handler.AnnotateHandler
	shareHandler     *handler.ShareHandler
	signatureHandler *handler.SignatureHandler
	logger           *zap.Logger
}

func NewRouter(
	cfg *config.Config,
	auth *middleware.AuthMiddleware,
	healthHandler *handler.HealthHandler,
	documentHandler *handler.DocumentHandler,
	annotateHandler *handler.AnnotateHandler,
	shareHandler *handler.ShareHandler,
	signatureHandler *handler.SignatureHandler,
	log *zap.Logger,
) *Router {
	r := &Router{
		config:           cfg,
		auth:             auth,
		healthHandler:    healthHandler,
		documentHandler:  documentHandler,
		annotateHandler:  annotateHandler,
		shareHandler:     shareHandler,
		signatureHandler: signatureHandler,
		logger:           log,
	}

	r.app = fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.BodyLimitBytes(),
	})

	return r
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.config.App.CORSOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: r.config.App.CORSOrigins != "*",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// Blobs written by the local storage driver
	if r.config.Storage.Driver == config.StorageDriverLocal {
		r.app.Static("/files", r.config.Storage.Local.BasePath)
	}

	// API v1 routes
	api := r.app.Group("/api/v1/easysign", r.auth.Handler())
	{
		// Documents
		api.Post("/upload/file", r.documentHandler.Upload)
		api.Post("/sign/file", r.documentHandler.Sign)
		api.Post("/annotate-signature", r.annotateHandler.AnnotateSignature)
		api.Post("/share/file", r.shareHandler.Share)
		api.Get("/file/:id", r.documentHandler.Get)
		api.Get("/file/:id/events", r.documentHandler.Events)

		// Downloads
		api.Get("/download/:fileId", r.documentHandler.Download)
		api.Get("/download-template/:fileId", r.documentHandler.DownloadTemplate)
		api.Get("/download-signature/:userId/:fileId", r.documentHandler.DownloadSignature)

		// Saved signatures
		api.Post("/upload/signature", r.signatureHandler.Save)
		api.Get("/fetch/signature", r.signatureHandler.Latest)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

// errorHandler answers errors that escaped the handlers. Only fiber errors carry a
// message safe for clients; anything else is logged and reported generically.
func (r *Router) errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if !errors.As(err, &e) {
		r.logger.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse(entity.KindInternal, "internal server error"),
		)
	}

	code := e.Code

	kind := entity.KindInternal
	switch code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
		kind = entity.KindValidation
	case fiber.StatusNotFound:
		kind = entity.KindNotFound
	case fiber.StatusUnauthorized:
		kind = entity.KindUnauthorized
	}

	return c.Status(code).JSON(entity.NewErrorResponse(kind, e.Message))
}
