package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/internal/model"
	"velanspaces/pkg/metrics"
	"velanspaces/pkg/outbox"
)

// SettlementRepository is the financial ledger. Settlements are insert-only;
// no update or delete is exposed.
type SettlementRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewSettlementRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *SettlementRepository {
	return &SettlementRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

// ListByProject returns settlements by payment date, newest first.
func (r *SettlementRepository) ListByProject(ctx context.Context, projectID string) ([]model.Settlement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, paid_to_type, paid_to_name, amount, mode, date,
		       description, screenshot_url, created_by, created_at
		FROM settlements
		WHERE project_id = $1
		ORDER BY date DESC
	`, projectID)
	if err != nil {
		r.logger.Error("Failed to list settlements", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	settlements := []model.Settlement{}
	for rows.Next() {
		var s model.Settlement
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.PaidToType, &s.PaidToName, &s.Amount,
			&s.Mode, &s.Date, &s.Description, &s.ScreenshotURL, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// Record inserts the settlement and bumps the project's running spend in a
// single transaction. The increment happens in SQL, not read-modify-write,
// so concurrent recordings cannot lose an update.
func (r *SettlementRepository) Record(ctx context.Context, s *model.Settlement) error {
	start := time.Now()
	r.logger.Debug("Recording settlement",
		zap.String("project_id", s.ProjectID),
		zap.Float64("amount", s.Amount),
		zap.String("paid_to_type", s.PaidToType),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE projects SET current_spend = current_spend + $2 WHERE id = $1
	`, s.ProjectID, s.Amount)
	if err != nil {
		r.logger.Error("Failed to increment current spend", zap.String("project_id", s.ProjectID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO settlements (id, project_id, paid_to_type, paid_to_name, amount, mode,
			date, description, screenshot_url, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`, s.ID, s.ProjectID, s.PaidToType, s.PaidToName, s.Amount, s.Mode,
		s.Date, s.Description, s.ScreenshotURL, s.CreatedBy,
	).Scan(&s.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert settlement", zap.String("project_id", s.ProjectID), zap.Error(err))
		return err
	}

	for _, collection := range []string{events.CollectionSettlements, events.CollectionProjects} {
		change := events.Change{
			Collection: collection,
			ProjectID:  s.ProjectID,
			EntityID:   s.ID,
			Action:     "created",
		}
		if collection == events.CollectionProjects {
			change.EntityID = s.ProjectID
			change.Action = "updated"
		}
		if err := r.outbox.InsertEvent(ctx, tx, &outbox.Event{
			AggregateType: "settlement",
			AggregateID:   s.ProjectID,
			RoutingKey:    change.RoutingKey(),
			Payload:       change.Marshal(),
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "settlements", time.Since(start))
	metrics.IncrementSettlementsRecorded(s.PaidToType)
	r.logger.Info("Settlement recorded",
		zap.String("project_id", s.ProjectID),
		zap.String("settlement_id", s.ID),
		zap.Float64("amount", s.Amount),
	)
	return nil
}
