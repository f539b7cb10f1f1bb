package usecase

import (
	"context"
	"fmt"
	"strings"
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

const defaultFilename = "document.pdf"

// UploadRequest creates a document from a PDF and the owner's signature
type UploadRequest struct {
	Title          string
	IsTemplate     bool
	Filename       string
	File           []byte
	SignatureImage string
}

type DocumentUsecase interface {
	Upload(ctx context.Context, owner entity.Signer, req *UploadRequest) (*entity.Document, error)
	Sign(ctx context.Context, documentID string, signer entity.Signer, signatureImage string) (*entity.Document, error)
	Get(ctx context.Context, documentID string) (*entity.DocumentView, error)
	// DownloadURL returns the latest signed file if any, else the original. With
	// templateOnly set, non-template documents are rejected.
	DownloadURL(ctx context.Context, documentID string, templateOnly bool) (string, error)
	// PartySignature returns the PNG signature a party signed the document with
	PartySignature(ctx context.Context, documentID, userID string) ([]byte, error)
	Events(ctx context.Context, documentID string) ([]entity.DocumentEvent, error)
}

type documentUsecase struct {
	documentStore
	config *config.Config
	store  storage.Store
	codec  pdf.Codec
}

func NewDocumentUsecase(
	cfg *config.Config,
	documents repository.DocumentRepository,
	events repository.EventRepository,
	locker lock.Locker,
	store storage.Store,
	codec pdf.Codec,
	logger *zap.Logger,
) DocumentUsecase {
	return &documentUsecase{
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

func (u *documentUsecase) Upload(ctx context.Context, owner entity.Signer, req *UploadRequest) (*entity.Document, error) {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return nil, entity.NewValidationError("title is required")
	case len(req.File) == 0:
		return nil, entity.NewValidationError("file is required")
	case req.SignatureImage == "":
		return nil, entity.NewValidationError("signatureCanvas is required")
	}

	if _, _, err := decodeSignature(req.SignatureImage); err != nil {
		return nil, err
	}
	if _, err := u.codec.Load(req.File); err != nil {
		return nil, codecError(err)
	}

	u.logger.Info("Uploading document",
		zap.String("owner", owner.Email),
		zap.String("title", req.Title),
		zap.Bool("is_template", req.IsTemplate),
		zap.Int("size_bytes", len(req.File)),
	)

	url, err := u.store.Upload(ctx, u.config.Storage.OriginalFolder, "doc_"+uuid.NewString()+".pdf", req.File, "application/pdf")
	if err != nil {
		u.logger.Error("Failed to store uploaded document", zap.Error(err))
		return nil, entity.NewUpstreamError("failed to store document", err)
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename
	}

	doc := entity.NewDocument(uuid.NewString(), req.Title, url, filename, req.IsTemplate, owner, req.SignatureImage, u.now())
	if err := u.documents.Create(ctx, doc); err != nil {
		return nil, entity.NewInternalError("failed to create document", err)
	}

	u.recordEvent(ctx, doc.ID, entity.EventCreated, owner.Email, doc.Title)

	u.logger.Info("Document created",
		zap.String("document_id", doc.ID),
		zap.String("file_url", url),
	)

	return doc, nil
}

func (u *documentUsecase) Sign(ctx context.Context, documentID string, signer entity.Signer, signatureImage string) (*entity.Document, error) {
	if documentID == "" {
		return nil, entity.NewValidationError("documentId is required")
	}
	if _, _, err := decodeSignature(signatureImage); err != nil {
		return nil, err
	}

	var doc *entity.Document
	err := u.withDocumentLock(ctx, documentID, func() error {
		var err error
		if doc, err = u.load(ctx, documentID); err != nil {
			return err
		}

		doc.RecordSignature(signer, signatureImage, u.now())
		return u.save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	u.recordEvent(ctx, documentID, entity.EventSigned, signer.Email, string(doc.Status()))

	u.logger.Info("Document signed",
		zap.String("document_id", documentID),
		zap.String("signer", signer.Email),
		zap.String("status", string(doc.Status())),
		zap.Int("signed_parties", len(doc.SignedParties())),
	)

	return doc, nil
}

func (u *documentUsecase) Get(ctx context.Context, documentID string) (*entity.DocumentView, error) {
	doc, err := u.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return entity.NewDocumentView(doc), nil
}

func (u *documentUsecase) DownloadURL(ctx context.Context, documentID string, templateOnly bool) (string, error) {
	doc, err := u.load(ctx, documentID)
	if err != nil {
		return "", err
	}
	if templateOnly && !doc.IsTemplate {
		return "", entity.NewValidationError("document %s is not a template", documentID)
	}

	url := doc.FileForSigning()
	if url == "" {
		return "", entity.NewNotFoundError("document %s has no file", documentID)
	}
	return url, nil
}

func (u *documentUsecase) PartySignature(ctx context.Context, documentID, userID string) ([]byte, error) {
	doc, err := u.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	i := doc.FindParty(userID, "")
	if i < 0 || doc.SigningParties[i].SignatureImage == "" {
		return nil, entity.NewNotFoundError("no signature of user %s on document %s", userID, documentID)
	}

	data, format, err := pdf.DecodeDataURI(doc.SigningParties[i].SignatureImage)
	if err != nil {
		return nil, codecError(err)
	}
	png, err := pdf.ToPNG(data, format)
	if err != nil {
		return nil, codecError(err)
	}
	return png, nil
}

func (u *documentUsecase) Events(ctx context.Context, documentID string) ([]entity.DocumentEvent, error) {
	if _, err := u.load(ctx, documentID); err != nil {
		return nil, err
	}

	events, err := u.events.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, entity.NewInternalError(fmt.Sprintf("failed to list events of %s", documentID), err)
	}
	return events, nil
}
