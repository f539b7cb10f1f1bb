package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
)

func TestDocumentRepositoryVersionCheck(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entity.NewDocument("doc-1", "NDA", "memory://a.pdf", "a.pdf", false,
		entity.Signer{UserID: "u-1", Email: "a@example.com"}, "img", time.Now())
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}

	first, _ := repo.FindByID(ctx, "doc-1")
	second, _ := repo.FindByID(ctx, "doc-1")

	first.AddParty(entity.UnregisteredIdentity("b@example.com"), "b@example.com")
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second.SignedFileURL = "memory://signed.pdf"
	if err := repo.Update(ctx, second); !errors.Is(err, entity.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, "doc-1")
	if len(stored.SigningParties) != 2 || stored.SignedFileURL != "" {
		t.Errorf("stale write leaked: %+v", stored)
	}
	if stored.Version != 2 {
		t.Errorf("version = %d, want 2", stored.Version)
	}
}

func TestDocumentRepositoryReturnsCopies(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entity.NewDocument("doc-1", "NDA", "memory://a.pdf", "a.pdf", false,
		entity.Signer{UserID: "u-1", Email: "a@example.com"}, "img", time.Now())
	repo.Create(ctx, doc)

	got, _ := repo.FindByID(ctx, "doc-1")
	got.SigningParties[0].Signed = false

	again, _ := repo.FindByID(ctx, "doc-1")
	if !again.SigningParties[0].Signed {
		t.Error("mutating a loaded document changed the stored one")
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSignatureRepositoryLatest(t *testing.T) {
	repo := NewSignatureRepository()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.Save(ctx, &entity.SignatureAsset{ID: "1", UserID: "u-1", SignURL: "old", CreatedAt: base})
	repo.Save(ctx, &entity.SignatureAsset{ID: "2", UserID: "u-1", SignURL: "new", CreatedAt: base.Add(time.Hour)})
	repo.Save(ctx, &entity.SignatureAsset{ID: "3", UserID: "u-2", SignURL: "other", CreatedAt: base.Add(2 * time.Hour)})

	latest, err := repo.Latest(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if latest.SignURL != "new" {
		t.Errorf("latest = %q, want new", latest.SignURL)
	}
	if _, err := repo.Latest(ctx, "u-3"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
