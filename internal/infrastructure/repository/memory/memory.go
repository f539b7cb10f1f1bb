// Package memory holds in-process repository implementations used by tests and
// by the usecase layer when exercised without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
)

type DocumentRepository struct {
	mu   sync.Mutex
	docs map[string]*entity.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{docs: make(map[string]*entity.Document)}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.Version == 0 {
		doc.Version = 1
	}
	r.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.docs[doc.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != doc.Version {
		return entity.ErrVersionConflict
	}

	doc.Version++
	doc.UpdatedAt = time.Now()
	r.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func cloneDocument(doc *entity.Document) *entity.Document {
	c := *doc
	c.SigningParties = make([]entity.SigningParty, len(doc.SigningParties))
	copy(c.SigningParties, doc.SigningParties)
	for i, p := range c.SigningParties {
		if p.SignedAt != nil {
			t := *p.SignedAt
			c.SigningParties[i].SignedAt = &t
		}
	}
	return &c
}

type UserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func NewUserRepository(users ...entity.User) *UserRepository {
	r := &UserRepository{users: make(map[string]entity.User)}
	for _, u := range users {
		u.Email = entity.NormalizeEmail(u.Email)
		r.users[u.ID] = u
	}
	return r
}

func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	u.Email = entity.NormalizeEmail(u.Email)
	if existing, ok := r.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	}
	r.users[u.ID] = u
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = entity.NormalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type SignatureRepository struct {
	mu     sync.Mutex
	assets []entity.SignatureAsset
}

func NewSignatureRepository() *SignatureRepository {
	return &SignatureRepository{}
}

func (r *SignatureRepository) Save(ctx context.Context, asset *entity.SignatureAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, *asset)
	return nil
}

func (r *SignatureRepository) Latest(ctx context.Context, userID string) (*entity.SignatureAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entity.SignatureAsset
	for i := range r.assets {
		a := &r.assets[i]
		if a.UserID != userID {
			continue
		}
		if latest == nil || !a.CreatedAt.Before(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	found := *latest
	return &found, nil
}

type EventRepository struct {
	mu     sync.Mutex
	nextID int64
	events []entity.DocumentEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Save(ctx context.Context, event *entity.DocumentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, *event)
	return nil
}

func (r *EventRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.DocumentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]entity.DocumentEvent, 0)
	for _, e := range r.events {
		if e.DocumentID == documentID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

var (
	_ repository.DocumentRepository  = (*DocumentRepository)(nil)
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.SignatureRepository = (*SignatureRepository)(nil)
	_ repository.EventRepository     = (*EventRepository)(nil)
)
