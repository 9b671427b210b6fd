package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/internal/model"
	"velanspaces/pkg/metrics"
	"velanspaces/pkg/outbox"
)

// UpdateRepository persists the project feed. Entries are append-only;
// comments are the sole post-hoc mutation and only ever grow.
type UpdateRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewUpdateRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *UpdateRepository {
	return &UpdateRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

// ListByProject returns feed entries newest first. When clientView is set,
// entries not flagged client-viewable are filtered out.
func (r *UpdateRepository) ListByProject(ctx context.Context, projectID string, clientView bool) ([]model.ProjectUpdate, error) {
	query := `
		SELECT id, project_id, timestamp, posted_by, role, type, category, content,
		       is_client_viewable, progress_percentage, comments, associated_worker_ids, room_id
		FROM project_updates
		WHERE project_id = $1
	`
	if clientView {
		query += ` AND is_client_viewable`
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to list updates", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	updates := []model.ProjectUpdate{}
	for rows.Next() {
		var u model.ProjectUpdate
		var comments []byte
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Timestamp, &u.PostedBy, &u.Role,
			&u.Type, &u.Category, &u.Content, &u.IsClientViewable,
			&u.ProgressPercentage, &comments, &u.AssociatedWorkerIDs, &u.RoomID); err != nil {
			return nil, err
		}
		u.Comments = []model.Comment{}
		if len(comments) > 0 {
			if err := json.Unmarshal(comments, &u.Comments); err != nil {
				return nil, err
			}
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// Insert posts a feed entry. When the entry carries a progress percentage,
// the project's completion percentage is overwritten in the same
// transaction; the entry insert and the override cannot diverge.
func (r *UpdateRepository) Insert(ctx context.Context, u *model.ProjectUpdate) error {
	start := time.Now()
	r.logger.Debug("Posting update",
		zap.String("project_id", u.ProjectID),
		zap.String("type", u.Type),
		zap.String("category", u.Category),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	comments, err := json.Marshal(u.Comments)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO project_updates (id, project_id, timestamp, posted_by, role, type, category,
			content, is_client_viewable, progress_percentage, comments, associated_worker_ids, room_id)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING timestamp
	`, u.ID, u.ProjectID, u.PostedBy, u.Role, u.Type, u.Category, u.Content,
		u.IsClientViewable, u.ProgressPercentage, comments, u.AssociatedWorkerIDs, u.RoomID,
	).Scan(&u.Timestamp)
	if err != nil {
		if mapped := notFoundOnFKViolation(err); mapped == ErrNotFound {
			return mapped
		}
		r.logger.Error("Failed to insert update", zap.String("project_id", u.ProjectID), zap.Error(err))
		return err
	}

	if u.ProgressPercentage != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE projects SET completion_percentage = $2 WHERE id = $1
		`, u.ProjectID, *u.ProgressPercentage)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	change := events.Change{
		Collection: events.CollectionUpdates,
		ProjectID:  u.ProjectID,
		EntityID:   u.ID,
		Action:     "created",
	}
	if err := r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "update",
		AggregateID:   u.ProjectID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "project_updates", time.Since(start))
	return nil
}

// AppendComment appends a comment to a feed entry. Appending an id that is
// already present is a no-op, so retries cannot duplicate comments.
func (r *UpdateRepository) AppendComment(ctx context.Context, projectID, updateID string, c model.Comment) error {
	start := time.Now()

	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE project_updates
		SET comments = comments || jsonb_build_array($3::jsonb)
		WHERE id = $1 AND project_id = $2
		AND NOT EXISTS (
			SELECT 1 FROM jsonb_array_elements(comments) AS e
			WHERE e->>'id' = $4
		)
	`, updateID, projectID, payload, c.ID)
	if err != nil {
		r.logger.Error("Failed to append comment",
			zap.String("update_id", updateID),
			zap.Error(err),
		)
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM project_updates WHERE id = $1 AND project_id = $2)
		`, updateID, projectID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		// Duplicate comment id: already appended, nothing to do.
		return tx.Commit(ctx)
	}

	change := events.Change{
		Collection: events.CollectionUpdates,
		ProjectID:  projectID,
		EntityID:   updateID,
		Action:     "updated",
	}
	if err := r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "update",
		AggregateID:   projectID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("update", "project_updates", time.Since(start))
	return nil
}

// GetByID fetches a single feed entry.
func (r *UpdateRepository) GetByID(ctx context.Context, projectID, updateID string) (*model.ProjectUpdate, error) {
	var u model.ProjectUpdate
	var comments []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, timestamp, posted_by, role, type, category, content,
		       is_client_viewable, progress_percentage, comments, associated_worker_ids, room_id
		FROM project_updates
		WHERE id = $1 AND project_id = $2
	`, updateID, projectID).Scan(&u.ID, &u.ProjectID, &u.Timestamp, &u.PostedBy, &u.Role,
		&u.Type, &u.Category, &u.Content, &u.IsClientViewable,
		&u.ProgressPercentage, &comments, &u.AssociatedWorkerIDs, &u.RoomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Comments = []model.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &u.Comments); err != nil {
			return nil, err
		}
	}
	return &u, nil
}
