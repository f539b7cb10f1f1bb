package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/delivery/http/middleware"
	"easysign/internal/domain/entity"
	"easysign/internal/usecase"
)

type DocumentHandler struct {
	usecase usecase.DocumentUsecase
	logger  *zap.Logger
	// maxUpload bounds the PDF read from a multipart upload
	maxUpload int
}

func NewDocumentHandler(cfg *config.Config, usecase usecase.DocumentUsecase, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		usecase:   usecase,
		logger:    logger,
		maxUpload: cfg.BodyLimitBytes(),
	}
}

// Upload godoc
// @Summary Upload a document
// @Description Store a PDF and create a document with the uploader as its first signed party
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param title formData string true "Document title"
// @Param isTemplate formData bool false "Template flag"
// @Param signatureCanvas formData string true "Uploader signature as data URI"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 422 {object} entity.APIResponse
// @Router /api/v1/easysign/upload/file [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxUpload)+1))
	if err != nil {
		return badRequest(c, "failed to read uploaded file")
	}
	if len(data) > h.maxUpload {
		return badRequest(c, "file is too large")
	}

	isTemplate := false
	if raw := c.FormValue("isTemplate"); raw != "" {
		if isTemplate, err = strconv.ParseBool(raw); err != nil {
			return badRequest(c, "isTemplate must be a boolean")
		}
	}

	doc, err := h.usecase.Upload(c.UserContext(), middleware.Signer(c), &usecase.UploadRequest{
		Title:          c.FormValue("title"),
		IsTemplate:     isTemplate,
		Filename:       fileHeader.Filename,
		File:           data,
		SignatureImage: c.FormValue("signatureCanvas"),
	})
	if err != nil {
		return respondError(c, h.logger, "Failed to upload document", err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(entity.NewDocumentView(doc), "Document uploaded successfully"),
	)
}

// Sign godoc
// @Summary Sign a document
// @Description Record the caller's signature on a document
// @Tags documents
// @Accept json
// @Produce json
// @Param request body entity.SignDocumentRequest true "Sign request"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/easysign/sign/file [post]
func (h *DocumentHandler) Sign(c *fiber.Ctx) error {
	var req entity.SignDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	doc, err := h.usecase.Sign(c.UserContext(), req.DocumentID, middleware.Signer(c), req.SignatureCanvas)
	if err != nil {
		return respondError(c, h.logger, "Failed to sign document", err)
	}

	return c.JSON(entity.NewSuccessResponse(entity.NewDocumentView(doc), "Document signed successfully"))
}

// Get godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/file/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	view, err := h.usecase.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get document", err)
	}

	return c.JSON(entity.NewSuccessResponse(view, "Document retrieved successfully"))
}

// Events godoc
// @Summary Document history
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/file/{id}/events [get]
func (h *DocumentHandler) Events(c *fiber.Ctx) error {
	events, err := h.usecase.Events(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get document events", err)
	}

	return c.JSON(entity.NewSuccessResponse(events, "Document events retrieved successfully"))
}

// Download godoc
// @Summary Download a document
// @Description Redirect to the latest signed version, or the original when unsigned
// @Tags downloads
// @Param fileId path string true "Document ID"
// @Success 302
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/download/{fileId} [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	return h.redirect(c, false)
}

// DownloadTemplate godoc
// @Summary Download a template
// @Tags downloads
// @Param fileId path string true "Document ID"
// @Success 302
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/download-template/{fileId} [get]
func (h *DocumentHandler) DownloadTemplate(c *fiber.Ctx) error {
	return h.redirect(c, true)
}

func (h *DocumentHandler) redirect(c *fiber.Ctx, templateOnly bool) error {
	url, err := h.usecase.DownloadURL(c.UserContext(), c.Params("fileId"), templateOnly)
	if err != nil {
		return respondError(c, h.logger, "Failed to resolve download", err)
	}
	return c.Redirect(url, fiber.StatusFound)
}

// DownloadSignature godoc
// @Summary Download a party's signature
// @Tags downloads
// @Produce png
// @Param userId path string true "User ID"
// @Param fileId path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/easysign/download-signature/{userId}/{fileId} [get]
func (h *DocumentHandler) DownloadSignature(c *fiber.Ctx) error {
	data, err := h.usecase.PartySignature(c.UserContext(), c.Params("fileId"), c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get signature image", err)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="signature.png"`)
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}
