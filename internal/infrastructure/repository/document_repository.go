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

type documentRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewDocumentRepository(db *database.Database, logger *zap.Logger) repository.DocumentRepository {
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	if doc.Version == 0 {
		doc.Version = 1
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO documents (id, title, file_url, signed_file_url, filename, is_template,
				owner_id, owner_email, status, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, query,
			doc.ID,
			doc.Title,
			doc.FileURL,
			nullString(doc.SignedFileURL),
			doc.Filename,
			doc.IsTemplate,
			doc.OwnerID,
			doc.OwnerEmail,
			string(doc.Status()),
			doc.Version,
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}

		return insertParties(ctx, tx, doc)
	})
	if err != nil {
		r.logger.Error("Failed to create document",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `
		SELECT id, title, file_url, signed_file_url, filename, is_template,
			owner_id, owner_email, version, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var (
		doc    entity.Document
		signed sql.NullString
	)
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.FileURL,
		&signed,
		&doc.Filename,
		&doc.IsTemplate,
		&doc.OwnerID,
		&doc.OwnerEmail,
		&doc.Version,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.SignedFileURL = signed.String

	parties, err := r.findParties(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.SigningParties = parties

	return &doc, nil
}

func (r *documentRepository) findParties(ctx context.Context, documentID string) ([]entity.SigningParty, error) {
	query := `
		SELECT user_id, email, signed, signed_at, signature_image
		FROM signing_parties
		WHERE document_id = $1
		ORDER BY position
	`

	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signing parties: %w", err)
	}
	defer rows.Close()

	var parties []entity.SigningParty
	for rows.Next() {
		var (
			p        entity.SigningParty
			userID   sql.NullString
			signedAt sql.NullTime
		)
		if err := rows.Scan(&userID, &p.Email, &p.Signed, &signedAt, &p.SignatureImage); err != nil {
			return nil, fmt.Errorf("failed to scan signing party: %w", err)
		}

		if userID.Valid && userID.String != "" {
			p.Identity = entity.RegisteredIdentity(userID.String)
		} else {
			p.Identity = entity.UnregisteredIdentity(p.Email)
		}
		if signedAt.Valid {
			t := signedAt.Time
			p.SignedAt = &t
		}
		parties = append(parties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signing parties: %w", err)
	}
	return parties, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *entity.Document) error {
	doc.UpdatedAt = time.Now()

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE documents
			SET title = $1, signed_file_url = $2, status = $3, version = version + 1, updated_at = $4
			WHERE id = $5 AND version = $6
		`
		result, err := tx.ExecContext(ctx, query,
			doc.Title,
			nullString(doc.SignedFileURL),
			string(doc.Status()),
			doc.UpdatedAt,
			doc.ID,
			doc.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return entity.ErrVersionConflict
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM signing_parties WHERE document_id = $1`, doc.ID); err != nil {
			return fmt.Errorf("failed to clear signing parties: %w", err)
		}
		return insertParties(ctx, tx, doc)
	})
	if err != nil {
		if !errors.Is(err, entity.ErrVersionConflict) {
			r.logger.Error("Failed to update document",
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
		}
		return err
	}

	doc.Version++
	return nil
}

func insertParties(ctx context.Context, tx *sql.Tx, doc *entity.Document) error {
	query := `
		INSERT INTO signing_parties (document_id, position, user_id, email, signed, signed_at, signature_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, p := range doc.SigningParties {
		var signedAt sql.NullTime
		if p.SignedAt != nil {
			signedAt = sql.NullTime{Time: *p.SignedAt, Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			doc.ID,
			i,
			nullString(p.UserID()),
			p.Email,
			p.Signed,
			signedAt,
			p.SignatureImage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert signing party %d: %w", i, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
