package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/internal/model"
	"velanspaces/pkg/metrics"
	"velanspaces/pkg/outbox"
)

type RoomRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewRoomRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *RoomRepository {
	return &RoomRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

// ListByProject returns the project's rooms sorted by name.
func (r *RoomRepository) ListByProject(ctx context.Context, projectID string) ([]model.Room, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, type, assigned_worker_ids
		FROM rooms
		WHERE project_id = $1
		ORDER BY name ASC
	`, projectID)
	if err != nil {
		r.logger.Error("Failed to list rooms", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.ProjectID, &room.Name, &room.Type, &room.AssignedWorkerIDs); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepository) Insert(ctx context.Context, room *model.Room) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO rooms (id, project_id, name, type, assigned_worker_ids)
		VALUES ($1, $2, $3, $4, $5)
	`, room.ID, room.ProjectID, room.Name, room.Type, room.AssignedWorkerIDs)
	if err != nil {
		if mapped := notFoundOnFKViolation(err); mapped == ErrNotFound {
			return mapped
		}
		r.logger.Error("Failed to insert room", zap.String("project_id", room.ProjectID), zap.Error(err))
		return err
	}

	if err := r.insertChange(ctx, tx, room, "created"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "rooms", time.Since(start))
	return nil
}

// Update overwrites the room's name, type, and worker assignment. The
// assignment set is replaced wholesale, not merged.
func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE rooms
		SET name = $3, type = $4, assigned_worker_ids = $5
		WHERE id = $1 AND project_id = $2
	`, room.ID, room.ProjectID, room.Name, room.Type, room.AssignedWorkerIDs)
	if err != nil {
		r.logger.Error("Failed to update room", zap.String("room_id", room.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := r.insertChange(ctx, tx, room, "updated"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("update", "rooms", time.Since(start))
	return nil
}

func (r *RoomRepository) insertChange(ctx context.Context, tx pgx.Tx, room *model.Room, action string) error {
	change := events.Change{
		Collection: events.CollectionRooms,
		ProjectID:  room.ProjectID,
		EntityID:   room.ID,
		Action:     action,
	}
	return r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "room",
		AggregateID:   room.ProjectID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	})
}
