package usecase

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"easysign/internal/config"
	"easysign/internal/domain/entity"
	"easysign/internal/infrastructure/lock"
	"easysign/internal/infrastructure/mailer"
	"easysign/internal/infrastructure/pdf"
	"easysign/internal/infrastructure/pdf/pdftest"
	"easysign/internal/infrastructure/repository/memory"
	"easysign/internal/infrastructure/storage"
)

var (
	owner = entity.Signer{UserID: "u-owner", Email: "owner@example.com", Name: "Owner"}
	guest = entity.Signer{UserID: "u-guest", Email: "guest@example.com", Name: "Guest"}

	signaturePNG = pdftest.PNGDataURI(300, 100, color.Black)
	pdfBytes     = pdftest.Build(1)
)

// recordingStore wraps a Store to observe fetches and inject upload failures
type recordingStore struct {
	storage.Store

	mu        sync.Mutex
	fetched   []string
	uploadErr error
}

func (s *recordingStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, url)
	s.mu.Unlock()
	return s.Store.Fetch(ctx, url)
}

func (s *recordingStore) Upload(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	err := s.uploadErr
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return s.Store.Upload(ctx, folder, name, data, contentType)
}

func (s *recordingStore) failUploads(err error) {
	s.mu.Lock()
	s.uploadErr = err
	s.mu.Unlock()
}

type fakeOutbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *fakeOutbox) Enqueue(ctx context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

type fixture struct {
	cfg    *config.Config
	docs   *memory.DocumentRepository
	events *memory.EventRepository
	users  *memory.UserRepository
	sigs   *memory.SignatureRepository
	store  *recordingStore
	codec  pdf.Codec
	locker lock.Locker
	outbox *fakeOutbox

	documents  DocumentUsecase
	compositor CompositorUsecase
	invites    InvitationUsecase
	signatures SignatureUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := &config.Config{
		Storage: config.StorageConfig{
			OriginalFolder: "EasySign/Files",
			SignedFolder:   "EasySign/SignedDocs",
		},
		PDF:  config.PDFConfig{SignatureScale: 0.2, RelaxedMode: true},
		Mail: config.MailConfig{SignLinkBase: "http://localhost:5173", FanoutLimit: 2},
	}

	f := &fixture{
		cfg:    cfg,
		docs:   memory.NewDocumentRepository(),
		events: memory.NewEventRepository(),
		users:  memory.NewUserRepository(entity.User{ID: guest.UserID, Email: guest.Email, Name: guest.Name}),
		sigs:   memory.NewSignatureRepository(),
		store:  &recordingStore{Store: storage.NewMemoryStore(nil)},
		codec:  pdf.NewCodec(cfg, logger),
		locker: lock.NewMemoryLocker(2 * time.Second),
		outbox: &fakeOutbox{},
	}

	f.documents = NewDocumentUsecase(cfg, f.docs, f.events, f.locker, f.store, f.codec, logger)
	f.compositor = NewCompositorUsecase(cfg, f.docs, f.events, f.locker, f.store, f.codec, logger)
	f.invites = NewInvitationUsecase(cfg, f.docs, f.events, f.users, f.locker, f.outbox, logger)
	f.signatures = NewSignatureUsecase(f.sigs, logger)
	return f
}

// uploadDocument creates a document owned by owner with the given page count
func (f *fixture) uploadDocument(t *testing.T, pages int) *entity.Document {
	t.Helper()
	doc, err := f.documents.Upload(context.Background(), owner, &UploadRequest{
		Title:          "Contract",
		Filename:       "contract.pdf",
		File:           pdftest.Build(pages),
		SignatureImage: signaturePNG,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return doc
}

func (f *fixture) eventKinds(t *testing.T, documentID string) []entity.EventKind {
	t.Helper()
	events, err := f.events.ListByDocument(context.Background(), documentID)
	if err != nil {
		t.Fatal(err)
	}
	kinds := make([]entity.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func assertKind(t *testing.T, err error, want entity.ErrorKind) {
	t.Helper()
	var appErr *entity.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError of kind %s, got %v", want, err)
	}
	if appErr.Kind != want {
		t.Fatalf("error kind = %s, want %s (%v)", appErr.Kind, want, err)
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
