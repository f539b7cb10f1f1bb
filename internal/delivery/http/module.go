package http

import (
	"go.uber.org/fx"

	"easysign/internal/delivery/http/handler"
	"easysign/internal/delivery/http/middleware"
	"easysign/internal/delivery/http/router"
)

var Module = fx.Module("http",
	middleware.Module,
	fx.Provide(
		handler.NewHealthHandler,
		handler.NewDocumentHandler,
		handler.NewAnnotateHandler,
		handler.NewShareHandler,
		handler.NewSignatureHandler,
		router.NewRouter,
	),
)
