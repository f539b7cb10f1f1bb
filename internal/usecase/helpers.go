package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/lock"
	"easysign/internal/infrastructure/pdf"
	"easysign/internal/infrastructure/storage"
)

// documentStore groups what every document mutation needs
type documentStore struct {
	documents repository.DocumentRepository
	events    repository.EventRepository
	locker    lock.Locker
	logger    *zap.Logger
	now       func() time.Time
}

// withDocumentLock runs fn while holding the document's exclusive lock
func (s *documentStore) withDocumentLock(ctx context.Context, documentID string, fn func() error) error {
	unlock, err := s.locker.Acquire(ctx, lock.DocumentKey(documentID))
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return entity.NewConflictError("document is busy, please retry", err)
		}
		return entity.NewInternalError("failed to lock document", err)
	}
	defer unlock()

	return fn()
}

func (s *documentStore) load(ctx context.Context, documentID string) (*entity.Document, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.NewNotFoundError("document %s not found", documentID)
	}
	if err != nil {
		return nil, entity.NewInternalError("failed to load document", err)
	}
	return doc, nil
}

func (s *documentStore) save(ctx context.Context, doc *entity.Document) error {
	err := s.documents.Update(ctx, doc)
	if errors.Is(err, entity.ErrVersionConflict) {
		return entity.NewConflictError("document was modified by another request, please retry", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewNotFoundError("document %s not found", doc.ID)
	}
	if err != nil {
		return entity.NewInternalError("failed to save document", err)
	}
	return nil
}

// recordEvent appends to the document history; failures are logged only
func (s *documentStore) recordEvent(ctx context.Context, documentID string, kind entity.EventKind, actor, detail string) {
	event := &entity.DocumentEvent{
		DocumentID: documentID,
		Kind:       kind,
		Actor:      actor,
		Detail:     detail,
		CreatedAt:  s.now(),
	}
	if err := s.events.Save(ctx, event); err != nil {
		s.logger.Warn("Failed to record document event",
			zap.String("document_id", documentID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// codecError maps codec and image decoding failures to application errors
func codecError(err error) error {
	switch {
	case errors.Is(err, pdf.ErrCorruptFormat):
		return entity.NewAppError(entity.KindCorruptFormat, "document is not a valid PDF", err)
	case errors.Is(err, pdf.ErrUnsupportedImageFormat):
		return entity.NewAppError(entity.KindUnsupportedImageFormat, "signature image format is not supported", err)
	case errors.Is(err, pdf.ErrPageIndexOutOfRange):
		return &entity.AppError{Kind: entity.KindValidation, Message: "page out of range", Err: err}
	case errors.Is(err, pdf.ErrMalformedImagePayload):
		return &entity.AppError{Kind: entity.KindValidation, Message: "signature image is not a valid base64 payload", Err: err}
	default:
		return entity.NewInternalError("failed to process document", err)
	}
}

// fetchError maps object store read failures
func fetchError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return entity.NewAppError(entity.KindNotFound, "document file not found", err)
	}
	return entity.NewUpstreamError("failed to fetch document file", err)
}

// decodeSignature validates a signature image payload
func decodeSignature(image string) ([]byte, pdf.ImageFormat, error) {
	if image == "" {
		return nil, "", entity.NewValidationError("signature image is required")
	}
	data, format, err := pdf.DecodeDataURI(image)
	if err != nil {
		return nil, "", codecError(err)
	}
	return data, format, nil
}
