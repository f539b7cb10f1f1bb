package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/database"
)

type signatureRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewSignatureRepository(db *database.Database, logger *zap.Logger) repository.SignatureRepository {
	return &signatureRepository{
		db:     db,
		logger: logger,
	}
}

func (r *signatureRepository) Save(ctx context.Context, asset *entity.SignatureAsset) error {
	query := `
		INSERT INTO signature_assets (id, user_id, sign_url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		asset.ID,
		asset.UserID,
		asset.SignURL,
		asset.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save signature asset",
			zap.String("user_id", asset.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save signature asset: %w", err)
	}

	return nil
}

func (r *signatureRepository) Latest(ctx context.Context, userID string) (*entity.SignatureAsset, error) {
	query := `
		SELECT id, user_id, sign_url, created_at
		FROM signature_assets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var asset entity.SignatureAsset
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&asset.ID,
		&asset.UserID,
		&asset.SignURL,
		&asset.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signature asset: %w", err)
	}

	return &asset, nil
}
