package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/delivery/http/middleware"
	"easysign/internal/domain/coords"
	"easysign/internal/domain/entity"
	"easysign/internal/usecase"
)

type AnnotateHandler struct {
	usecase usecase.CompositorUsecase
	mapper  *coords.Mapper
	logger  *zap.Logger
}

func NewAnnotateHandler(usecase usecase.CompositorUsecase, mapper *coords.Mapper, logger *zap.Logger) *AnnotateHandler {
	return &AnnotateHandler{
		usecase: usecase,
		mapper:  mapper,
		logger:  logger,
	}
}

// AnnotateSignature godoc
// @Summary Place a signature on a page
// @Description Composite the signature image onto the current version of the document
// @Tags documents
// @Accept json
// @Produce json
// @Param request body entity.AnnotateSignatureRequest true "Annotate request"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Failure 422 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/easysign/annotate-signature [post]
func (h *AnnotateHandler) AnnotateSignature(c *fiber.Ctx) error {
	var req entity.AnnotateSignatureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	x, y := req.X, req.Y
	if req.Click != nil && (x == nil || y == nil) {
		p := h.mapper.ToPDF(coords.Click{
			X:            req.Click.X,
			Y:            req.Click.Y,
			OriginX:      req.Click.OriginX,
			OriginY:      req.Click.OriginY,
			CanvasHeight: req.Click.CanvasHeight,
		})
		x, y = &p.X, &p.Y
	}

	signedURL, err := h.usecase.Annotate(c.UserContext(), &usecase.AnnotateRequest{
		DocumentID:     req.DocumentID,
		Page:           req.Page,
		X:              x,
		Y:              y,
		SignatureImage: req.SignatureCanvas,
		Signer:         middleware.Signer(c),
	})
	if err != nil {
		return respondError(c, h.logger, "Failed to annotate signature", err)
	}

	return c.JSON(entity.NewSuccessResponse(
		entity.AnnotateSignatureResponse{SignedURL: signedURL},
		"Signature added to PDF successfully",
	))
}
