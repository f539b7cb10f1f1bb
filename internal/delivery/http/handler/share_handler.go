package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/delivery/http/middleware"
	"easysign/internal/domain/entity"
	"easysign/internal/usecase"
)

type ShareHandler struct {
	usecase usecase.InvitationUsecase
	logger  *zap.Logger
}

func NewShareHandler(usecase usecase.InvitationUsecase, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Share godoc
// @Summary Invite signers
// @Description Add signing parties to a document and email them a signature request
// @Tags documents
// @Accept json
// @Produce json
// @Param request body entity.ShareDocumentRequest true "Share request"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/share/file [post]
func (h *ShareHandler) Share(c *fiber.Ctx) error {
	var req entity.ShareDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	doc, err := h.usecase.Invite(c.UserContext(), req.DocumentID, middleware.Signer(c), req.Recipients()...)
	if err != nil {
		return respondError(c, h.logger, "Failed to share document", err)
	}

	return c.JSON(entity.NewSuccessResponse(entity.NewDocumentView(doc), "Invitation sent successfully"))
}
