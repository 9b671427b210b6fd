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

// TimelineRepository persists phases and tasks granularly, one row per
// entity. Whole-timeline replacement is deliberately not offered: it loses
// writes under concurrent editors.
type TimelineRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewTimelineRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *TimelineRepository {
	return &TimelineRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

// ListPhases returns the project's phases in timeline order, tasks included.
func (r *TimelineRepository) ListPhases(ctx context.Context, projectID string) ([]model.TimelinePhase, error) {
	start := time.Now()

	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, description, start_date, target_date, status, position
		FROM timeline_phases
		WHERE project_id = $1
		ORDER BY position ASC
	`, projectID)
	if err != nil {
		r.logger.Error("Failed to list phases", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	phases := []model.TimelinePhase{}
	index := make(map[string]int)
	for rows.Next() {
		var p model.TimelinePhase
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Description,
			&p.StartDate, &p.TargetDate, &p.Status, &p.Position); err != nil {
			return nil, err
		}
		p.Tasks = []model.TimelineTask{}
		index[p.ID] = len(phases)
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := r.db.Query(ctx, `
		SELECT t.id, t.phase_id, t.title, t.description, t.start_date, t.target_date,
		       t.status, t.position, t.assigned_worker_ids
		FROM timeline_tasks t
		JOIN timeline_phases p ON p.id = t.phase_id
		WHERE p.project_id = $1
		ORDER BY t.position ASC
	`, projectID)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t model.TimelineTask
		if err := taskRows.Scan(&t.ID, &t.PhaseID, &t.Title, &t.Description,
			&t.StartDate, &t.TargetDate, &t.Status, &t.Position, &t.AssignedWorkerIDs); err != nil {
			return nil, err
		}
		if i, ok := index[t.PhaseID]; ok {
			phases[i].Tasks = append(phases[i].Tasks, t)
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, err
	}

	metrics.RecordDBQueryDuration("select", "timeline_phases", time.Since(start))
	return phases, nil
}

// AddPhase appends a phase at the end of the project's timeline.
func (r *TimelineRepository) AddPhase(ctx context.Context, p *model.TimelinePhase) error {
	return r.inTx(ctx, p.ProjectID, "created", p.ID, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO timeline_phases (id, project_id, name, description, start_date, target_date, status, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7,
				(SELECT COALESCE(MAX(position), 0) + 1 FROM timeline_phases WHERE project_id = $2))
			RETURNING position
		`, p.ID, p.ProjectID, p.Name, p.Description, p.StartDate, p.TargetDate, p.Status).Scan(&p.Position)
		return notFoundOnFKViolation(err)
	})
}

// UpdatePhase overwrites a phase's editable fields.
func (r *TimelineRepository) UpdatePhase(ctx context.Context, p *model.TimelinePhase) error {
	return r.inTx(ctx, p.ProjectID, "updated", p.ID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE timeline_phases
			SET name = $3, description = $4, start_date = $5, target_date = $6, status = $7
			WHERE id = $1 AND project_id = $2
		`, p.ID, p.ProjectID, p.Name, p.Description, p.StartDate, p.TargetDate, p.Status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeletePhase removes a phase and, via cascade, its tasks.
func (r *TimelineRepository) DeletePhase(ctx context.Context, projectID, phaseID string) error {
	return r.inTx(ctx, projectID, "deleted", phaseID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM timeline_phases WHERE id = $1 AND project_id = $2
		`, phaseID, projectID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddTask appends a task at the end of a phase.
func (r *TimelineRepository) AddTask(ctx context.Context, projectID string, t *model.TimelineTask) error {
	return r.inTx(ctx, projectID, "created", t.ID, func(tx pgx.Tx) error {
		if err := r.phaseBelongs(ctx, tx, projectID, t.PhaseID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO timeline_tasks (id, phase_id, title, description, start_date, target_date, status, position, assigned_worker_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7,
				(SELECT COALESCE(MAX(position), 0) + 1 FROM timeline_tasks WHERE phase_id = $2), $8)
			RETURNING position
		`, t.ID, t.PhaseID, t.Title, t.Description, t.StartDate, t.TargetDate, t.Status, t.AssignedWorkerIDs).Scan(&t.Position)
	})
}

// UpdateTask overwrites a task's editable fields, assignment set included.
func (r *TimelineRepository) UpdateTask(ctx context.Context, projectID string, t *model.TimelineTask) error {
	return r.inTx(ctx, projectID, "updated", t.ID, func(tx pgx.Tx) error {
		if err := r.phaseBelongs(ctx, tx, projectID, t.PhaseID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE timeline_tasks
			SET title = $3, description = $4, start_date = $5, target_date = $6,
			    status = $7, assigned_worker_ids = $8
			WHERE id = $1 AND phase_id = $2
		`, t.ID, t.PhaseID, t.Title, t.Description, t.StartDate, t.TargetDate, t.Status, t.AssignedWorkerIDs)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteTask removes a single task.
func (r *TimelineRepository) DeleteTask(ctx context.Context, projectID, phaseID, taskID string) error {
	return r.inTx(ctx, projectID, "deleted", taskID, func(tx pgx.Tx) error {
		if err := r.phaseBelongs(ctx, tx, projectID, phaseID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			DELETE FROM timeline_tasks WHERE id = $1 AND phase_id = $2
		`, taskID, phaseID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *TimelineRepository) phaseBelongs(ctx context.Context, tx pgx.Tx, projectID, phaseID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM timeline_phases WHERE id = $1 AND project_id = $2)
	`, phaseID, projectID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (r *TimelineRepository) inTx(ctx context.Context, projectID, action, entityID string, fn func(tx pgx.Tx) error) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Error("Timeline write failed",
				zap.String("project_id", projectID),
				zap.String("entity_id", entityID),
				zap.Error(err),
			)
		}
		return err
	}

	change := events.Change{
		Collection: events.CollectionTimeline,
		ProjectID:  projectID,
		EntityID:   entityID,
		Action:     action,
	}
	ev := &outbox.Event{
		AggregateType: "timeline",
		AggregateID:   projectID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	}
	if err := r.outbox.InsertEvent(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("write", "timeline_phases", time.Since(start))
	return nil
}
