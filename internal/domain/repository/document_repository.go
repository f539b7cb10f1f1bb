package repository

import (
	"context"
	"errors"

	"easysign/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no row matches
var ErrNotFound = errors.New("record not found")

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindByID(ctx context.Context, id string) (*entity.Document, error)
	// Update saves doc if its Version still matches the stored one and then increments
	// it. A mismatch yields entity.ErrVersionConflict.
	Update(ctx context.Context, doc *entity.Document) error
}

type UserRepository interface {
	// Upsert inserts the user or refreshes name and email of an existing id
	Upsert(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type SignatureRepository interface {
	Save(ctx context.Context, asset *entity.SignatureAsset) error
	Latest(ctx context.Context, userID string) (*entity.SignatureAsset, error)
}

type EventRepository interface {
	Save(ctx context.Context, event *entity.DocumentEvent) error
	ListByDocument(ctx context.Context, documentID string) ([]entity.DocumentEvent, error)
}
