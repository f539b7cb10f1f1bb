package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/database"
)

type eventRepository struct {
	db     *database.Database
	logger *zap.Logger
}

// NewEventRepository creates a new document event repository
func NewEventRepository(db *database.Database, logger *zap.Logger) repository.EventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
	}
}

// Save appends an event to a document's history
func (r *eventRepository) Save(ctx context.Context, event *entity.DocumentEvent) error {
	query := `
		INSERT INTO document_events (document_id, kind, actor, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		event.DocumentID,
		string(event.Kind),
		event.Actor,
		event.Detail,
		event.CreatedAt,
	).Scan(&event.ID)

	if err != nil {
		r.logger.Error("Failed to save document event",
			zap.String("document_id", event.DocumentID),
			zap.String("kind", string(event.Kind)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save document event: %w", err)
	}

	return nil
}

// ListByDocument returns the history of a document, oldest first
func (r *eventRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.DocumentEvent, error) {
	query := `
		SELECT id, document_id, kind, actor, detail, created_at
		FROM document_events
		WHERE document_id = $1
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document events: %w", err)
	}
	defer rows.Close()

	events := make([]entity.DocumentEvent, 0)
	for rows.Next() {
		var (
			e    entity.DocumentEvent
			kind string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &kind, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document event: %w", err)
		}
		e.Kind = entity.EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document events: %w", err)
	}
	return events, nil
}
