package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/database"
)

type userRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewUserRepository(db *database.Database, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Name,
		entity.NormalizeEmail(user.Email),
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert user",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user entity.User
	err := r.db.DB.QueryRowContext(ctx, query, entity.NormalizeEmail(email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
