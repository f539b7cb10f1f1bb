package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/delivery/http/middleware"
	"easysign/internal/domain/entity"
	"easysign/internal/usecase"
)

type SignatureHandler struct {
	usecase usecase.SignatureUsecase
	logger  *zap.Logger
}

func NewSignatureHandler(usecase usecase.SignatureUsecase, logger *zap.Logger) *SignatureHandler {
	return &SignatureHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Save godoc
// @Summary Save a reusable signature
// @Tags signatures
// @Accept json
// @Produce json
// @Param request body entity.SaveSignatureRequest true "Signature"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Router /api/v1/easysign/upload/signature [post]
func (h *SignatureHandler) Save(c *fiber.Ctx) error {
	var req entity.SaveSignatureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	asset, err := h.usecase.Save(c.UserContext(), middleware.Signer(c).UserID, req.SignURL)
	if err != nil {
		return respondError(c, h.logger, "Failed to save signature", err)
	}

	return c.Status(fiber.StatusCreated).JSON(entity.NewSuccessResponse(asset, "Signature saved successfully"))
}

// Latest godoc
// @Summary Fetch the caller's latest signature
// @Tags signatures
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/fetch/signature [get]
func (h *SignatureHandler) Latest(c *fiber.Ctx) error {
	asset, err := h.usecase.Latest(c.UserContext(), middleware.Signer(c).UserID)
	if err != nil {
		return respondError(c, h.logger, "Failed to fetch signature", err)
	}

	return c.JSON(entity.NewSuccessResponse(asset, "Signature retrieved successfully"))
}
