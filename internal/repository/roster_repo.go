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

// RosterRepository holds the global worker and manager rosters. Entities
// here are referenced by id from projects, rooms, tasks and updates, never
// copied into them.
type RosterRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewRosterRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *RosterRepository {
	return &RosterRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

func (r *RosterRepository) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, role, phone, type, notes, assigned_projects
		FROM workers
	`)
	if err != nil {
		r.logger.Error("Failed to list workers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	workers := []model.Worker{}
	for rows.Next() {
		var w model.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Role, &w.Phone, &w.Type, &w.Notes, &w.AssignedProjects); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *RosterRepository) GetWorkerByID(ctx context.Context, id string) (*model.Worker, error) {
	var w model.Worker
	err := r.db.QueryRow(ctx, `
		SELECT id, name, role, phone, type, notes, assigned_projects
		FROM workers
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.Role, &w.Phone, &w.Type, &w.Notes, &w.AssignedProjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// AddWorker creates a roster worker. The id may be caller-supplied (the
// quick-create flows use convenience ids) or generated upstream.
func (r *RosterRepository) AddWorker(ctx context.Context, w *model.Worker) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workers (id, name, role, phone, type, notes, assigned_projects)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID, w.Name, w.Role, w.Phone, w.Type, w.Notes, w.AssignedProjects)
	if err != nil {
		r.logger.Error("Failed to insert worker", zap.String("id", w.ID), zap.Error(err))
		return err
	}

	if err := r.insertChange(ctx, tx, events.CollectionWorkers, w.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "workers", time.Since(start))
	return nil
}

func (r *RosterRepository) ListManagers(ctx context.Context) ([]model.Manager, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, password_hash
		FROM managers
	`)
	if err != nil {
		r.logger.Error("Failed to list managers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	managers := []model.Manager{}
	for rows.Next() {
		var m model.Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.PasswordHash); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

func (r *RosterRepository) GetManagerByID(ctx context.Context, id string) (*model.Manager, error) {
	var m model.Manager
	err := r.db.QueryRow(ctx, `
		SELECT id, name, password_hash
		FROM managers
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// AddManager creates a roster manager. PasswordHash must already be bcrypt;
// hashing happens in the service layer.
func (r *RosterRepository) AddManager(ctx context.Context, m *model.Manager) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO managers (id, name, password_hash)
		VALUES ($1, $2, $3)
	`, m.ID, m.Name, m.PasswordHash)
	if err != nil {
		r.logger.Error("Failed to insert manager", zap.String("id", m.ID), zap.Error(err))
		return err
	}

	if err := r.insertChange(ctx, tx, events.CollectionManagers, m.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "managers", time.Since(start))
	return nil
}

func (r *RosterRepository) insertChange(ctx context.Context, tx pgx.Tx, collection, entityID string) error {
	change := events.Change{
		Collection: collection,
		EntityID:   entityID,
		Action:     "created",
	}
	return r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "roster",
		AggregateID:   entityID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	})
}
