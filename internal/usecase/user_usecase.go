package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
)

// UserUsecase mirrors identities verified from tokens into the local users table
type UserUsecase interface {
	Sync(ctx context.Context, signer entity.Signer) error
}

type userUsecase struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserUsecase(repo repository.UserRepository, logger *zap.Logger) UserUsecase {
	return &userUsecase{
		repo:   repo,
		logger: logger,
	}
}

func (u *userUsecase) Sync(ctx context.Context, signer entity.Signer) error {
	now := time.Now()
	user := &entity.User{
		ID:        signer.UserID,
		Name:      signer.Name,
		Email:     signer.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.repo.Upsert(ctx, user); err != nil {
		u.logger.Warn("Failed to mirror user",
			zap.String("user_id", signer.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
