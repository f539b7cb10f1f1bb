package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
)

type SignatureUsecase interface {
	Save(ctx context.Context, userID, signURL string) (*entity.SignatureAsset, error)
	// Latest returns the most recently saved signature of the user
	Latest(ctx context.Context, userID string) (*entity.SignatureAsset, error)
}

type signatureUsecase struct {
	repo   repository.SignatureRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSignatureUsecase(repo repository.SignatureRepository, logger *zap.Logger) SignatureUsecase {
	return &signatureUsecase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (u *signatureUsecase) Save(ctx context.Context, userID, signURL string) (*entity.SignatureAsset, error) {
	signURL = strings.TrimSpace(signURL)
	if signURL == "" {
		return nil, entity.NewValidationError("signUrl is required")
	}
	if strings.HasPrefix(signURL, "data:") {
		if _, _, err := decodeSignature(signURL); err != nil {
			return nil, err
		}
	}

	asset := &entity.SignatureAsset{
		ID:        uuid.NewString(),
		UserID:    userID,
		SignURL:   signURL,
		CreatedAt: u.now(),
	}
	if err := u.repo.Save(ctx, asset); err != nil {
		return nil, entity.NewInternalError("failed to save signature", err)
	}

	u.logger.Info("Signature saved",
		zap.String("user_id", userID),
		zap.String("signature_id", asset.ID),
	)

	return asset, nil
}

func (u *signatureUsecase) Latest(ctx context.Context, userID string) (*entity.SignatureAsset, error) {
	asset, err := u.repo.Latest(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.NewNotFoundError("no saved signature")
	}
	if err != nil {
		return nil, entity.NewInternalError("failed to get signature", err)
	}
	return asset, nil
}
