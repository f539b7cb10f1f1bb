package usecase

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/lock"
	"easysign/internal/infrastructure/pdf"
	"easysign/internal/infrastructure/storage"
)

// AnnotateRequest places a signature image on one page of a document.
// Page is 1-based; X and Y are PDF user space points of the image's bottom-left corner.
type AnnotateRequest struct {
	DocumentID     string
	Page           *int
	X              *float64
	Y              *float64
	SignatureImage string
	Signer         entity.Signer
}

type CompositorUsecase interface {
	// Annotate composites the signature onto the current version of the document,
	// stores the result under a new key and returns its URL.
	Annotate(ctx context.Context, req *AnnotateRequest) (string, error)
}

type compositorUsecase struct {
	documentStore
	config *config.Config
	store  storage.Store
	codec  pdf.Codec
}

func NewCompositorUsecase(
	cfg *config.Config,
	documents repository.DocumentRepository,
	events repository.EventRepository,
	locker lock.Locker,
	store storage.Store,
	codec pdf.Codec,
	logger *zap.Logger,
) CompositorUsecase {
	return &compositorUsecase{
		documentStore: documentStore{
			documents: documents,
			events:    events,
			locker:    locker,
			logger:    logger,
			now:       time.Now,
		},
		config: cfg,
		store:  store,
		codec:  codec,
	}
}

func validateAnnotate(req *AnnotateRequest) error {
	switch {
	case req.DocumentID == "":
		return entity.NewValidationError("documentId is required")
	case req.Page == nil:
		return entity.NewValidationError("page is required")
	case req.X == nil || req.Y == nil:
		return entity.NewValidationError("x and y coordinates are required")
	case req.SignatureImage == "":
		return entity.NewValidationError("signatureCanvas is required")
	case *req.Page < 1:
		return entity.NewValidationError("page must be a positive integer")
	}
	return nil
}

func (u *compositorUsecase) Annotate(ctx context.Context, req *AnnotateRequest) (string, error) {
	if err := validateAnnotate(req); err != nil {
		return "", err
	}

	imageData, imageFormat, err := decodeSignature(req.SignatureImage)
	if err != nil {
		return "", err
	}

	u.logger.Info("Annotating document",
		zap.String("document_id", req.DocumentID),
		zap.Int("page", *req.Page),
		zap.Float64("x", *req.X),
		zap.Float64("y", *req.Y),
		zap.String("signer", req.Signer.Email),
	)

	var signedURL string
	err = u.withDocumentLock(ctx, req.DocumentID, func() error {
		doc, err := u.load(ctx, req.DocumentID)
		if err != nil {
			return err
		}

		source := doc.FileForSigning()
		if source == "" {
			return entity.NewNotFoundError("document %s has no file", doc.ID)
		}
		if doc.SignedCount() == 0 {
			return entity.NewValidationError("document has no signed party yet")
		}

		raw, err := u.store.Fetch(ctx, source)
		if err != nil {
			u.logger.Error("Failed to fetch document file",
				zap.String("document_id", doc.ID),
				zap.String("url", source),
				zap.Error(err),
			)
			return fetchError(err)
		}

		out, err := u.composite(raw, imageData, imageFormat, *req.Page, *req.X, *req.Y)
		if err != nil {
			return err
		}

		name := "signed_" + uuid.NewString() + ".pdf"
		url, err := u.store.Upload(ctx, path.Join(u.config.Storage.SignedFolder, doc.ID), name, out, "application/pdf")
		if err != nil {
			u.logger.Error("Failed to upload signed document",
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
			return entity.NewUpstreamError("failed to store signed document", err)
		}

		doc.SignedFileURL = url
		if err := u.save(ctx, doc); err != nil {
			return err
		}

		signedURL = url
		return nil
	})
	if err != nil {
		return "", err
	}

	u.recordEvent(ctx, req.DocumentID, entity.EventAnnotated, req.Signer.Email,
		fmt.Sprintf("page %d at (%g, %g)", *req.Page, *req.X, *req.Y))

	u.logger.Info("Document annotated",
		zap.String("document_id", req.DocumentID),
		zap.String("signed_url", signedURL),
	)

	return signedURL, nil
}

func (u *compositorUsecase) composite(raw, imageData []byte, imageFormat pdf.ImageFormat, page int, x, y float64) ([]byte, error) {
	doc, err := u.codec.Load(raw)
	if err != nil {
		return nil, codecError(err)
	}

	pageCount := u.codec.PageCount(doc)
	if page > pageCount {
		return nil, entity.NewValidationError("page %d out of range, document has pages 1..%d", page, pageCount)
	}

	img, err := u.codec.EmbedRasterImage(doc, imageData, imageFormat)
	if err != nil {
		return nil, codecError(err)
	}

	width, height := pdf.ScaledSize(img, u.codec.Scale())
	if err := u.codec.DrawImage(doc, page-1, img, pdf.Rect{X: x, Y: y, Width: width, Height: height}); err != nil {
		return nil, codecError(err)
	}

	out, err := u.codec.Serialize(doc)
	if err != nil {
		return nil, codecError(err)
	}
	return out, nil
}
