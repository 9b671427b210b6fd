package repository

import (
	"context"
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

type DesignRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewDesignRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *DesignRepository {
	return &DesignRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

// ListByProject returns designs newest first.
func (r *DesignRepository) ListByProject(ctx context.Context, projectID string) ([]model.DesignDocument, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, title, type, url, posted_by, timestamp,
		       approval_required, approved, approved_by, approval_time, rejected, feedback
		FROM designs
		WHERE project_id = $1
		ORDER BY timestamp DESC
	`, projectID)
	if err != nil {
		r.logger.Error("Failed to list designs", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	designs := []model.DesignDocument{}
	for rows.Next() {
		var d model.DesignDocument
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Title, &d.Type, &d.URL, &d.PostedBy, &d.Timestamp,
			&d.ApprovalStatus.Required, &d.ApprovalStatus.Approved, &d.ApprovalStatus.ApprovedBy,
			&d.ApprovalStatus.Timestamp, &d.ApprovalStatus.Rejected, &d.ApprovalStatus.Feedback); err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func (r *DesignRepository) GetByID(ctx context.Context, projectID, designID string) (*model.DesignDocument, error) {
	var d model.DesignDocument
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, title, type, url, posted_by, timestamp,
		       approval_required, approved, approved_by, approval_time, rejected, feedback
		FROM designs
		WHERE id = $1 AND project_id = $2
	`, designID, projectID).Scan(&d.ID, &d.ProjectID, &d.Title, &d.Type, &d.URL, &d.PostedBy, &d.Timestamp,
		&d.ApprovalStatus.Required, &d.ApprovalStatus.Approved, &d.ApprovalStatus.ApprovedBy,
		&d.ApprovalStatus.Timestamp, &d.ApprovalStatus.Rejected, &d.ApprovalStatus.Feedback)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DesignRepository) Insert(ctx context.Context, d *model.DesignDocument) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO designs (id, project_id, title, type, url, posted_by, timestamp,
			approval_required, approved, approved_by, approval_time, rejected, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9, $10, $11, $12)
		RETURNING timestamp
	`, d.ID, d.ProjectID, d.Title, d.Type, d.URL, d.PostedBy,
		d.ApprovalStatus.Required, d.ApprovalStatus.Approved, d.ApprovalStatus.ApprovedBy,
		d.ApprovalStatus.Timestamp, d.ApprovalStatus.Rejected, d.ApprovalStatus.Feedback,
	).Scan(&d.Timestamp)
	if err != nil {
		if mapped := notFoundOnFKViolation(err); mapped == ErrNotFound {
			return mapped
		}
		r.logger.Error("Failed to insert design", zap.String("project_id", d.ProjectID), zap.Error(err))
		return err
	}

	if err := r.insertChange(ctx, tx, d.ProjectID, d.ID, "created"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "designs", time.Since(start))
	return nil
}

// SetApproval overwrites the design's approval block. The guard that
// approval requires approval_required lives in the service layer.
func (r *DesignRepository) SetApproval(ctx context.Context, projectID, designID string, status model.ApprovalStatus) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE designs
		SET approval_required = $3, approved = $4, approved_by = $5,
		    approval_time = $6, rejected = $7, feedback = $8
		WHERE id = $1 AND project_id = $2
	`, designID, projectID, status.Required, status.Approved, status.ApprovedBy,
		status.Timestamp, status.Rejected, status.Feedback)
	if err != nil {
		r.logger.Error("Failed to set design approval", zap.String("design_id", designID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := r.insertChange(ctx, tx, projectID, designID, "updated"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("update", "designs", time.Since(start))
	return nil
}

func (r *DesignRepository) insertChange(ctx context.Context, tx pgx.Tx, projectID, designID, action string) error {
	change := events.Change{
		Collection: events.CollectionDesigns,
		ProjectID:  projectID,
		EntityID:   designID,
		Action:     action,
	}
	return r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "design",
		AggregateID:   projectID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	})
}
