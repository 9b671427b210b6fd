package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/internal/model"
	"velanspaces/pkg/metrics"
	"velanspaces/pkg/outbox"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		outbox: ob,
		logger: logger,
	}
}

const projectColumns = `id, project_name, client_name, client_phone, client_email,
	client_address, client_notes, location, estimated_cost, budget, current_spend,
	manager_ids, worker_ids, is_complete, completion_percentage, created_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.ProjectName,
		&p.ClientName,
		&p.ClientPhone,
		&p.ClientEmail,
		&p.ClientAddress,
		&p.ClientNotes,
		&p.Location,
		&p.EstimatedCost,
		&p.Budget,
		&p.CurrentSpend,
		&p.ManagerIDs,
		&p.WorkerIDs,
		&p.IsComplete,
		&p.CompletionPercentage,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert writes a new project document. Returns ErrDuplicateID on a
// generated-id collision so the caller can retry with a fresh id.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	start := time.Now()
	r.logger.Debug("Inserting project",
		zap.String("id", p.ID),
		zap.String("project_name", p.ProjectName),
	)

	query := `
        INSERT INTO projects (id, project_name, client_name, client_phone, client_email,
            client_address, client_notes, location, estimated_cost, budget, current_spend,
            manager_ids, worker_ids, is_complete, completion_percentage, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
        RETURNING created_at
    `
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, query,
		p.ID,
		p.ProjectName,
		p.ClientName,
		p.ClientPhone,
		p.ClientEmail,
		p.ClientAddress,
		p.ClientNotes,
		p.Location,
		p.EstimatedCost,
		p.Budget,
		p.CurrentSpend,
		p.ManagerIDs,
		p.WorkerIDs,
		p.IsComplete,
		p.CompletionPercentage,
	).Scan(&p.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	change := events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  p.ID,
		EntityID:   p.ID,
		Action:     "created",
	}
	ev := &outbox.Event{
		AggregateType: "project",
		AggregateID:   p.ID,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	}
	if err := r.outbox.InsertEvent(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("insert", "projects", time.Since(start))
	r.logger.Info("Project inserted successfully",
		zap.String("id", p.ID),
		zap.String("project_name", p.ProjectName),
	)
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get project", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ListAll returns every project, newest first. HEAD scope only.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects ORDER BY created_at DESC`, projectColumns)
	return r.list(ctx, query)
}

// ListByManager returns projects whose manager_ids contain managerID.
func (r *ProjectRepository) ListByManager(ctx context.Context, managerID string) ([]*model.Project, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE $1 = ANY(manager_ids) ORDER BY created_at DESC`,
		projectColumns,
	)
	return r.list(ctx, query, managerID)
}

// ListByWorker returns projects whose worker_ids contain workerID.
func (r *ProjectRepository) ListByWorker(ctx context.Context, workerID string) ([]*model.Project, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE $1 = ANY(worker_ids) ORDER BY created_at DESC`,
		projectColumns,
	)
	return r.list(ctx, query, workerID)
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...any) ([]*model.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateFinancials overwrites estimated cost and budget unconditionally.
func (r *ProjectRepository) UpdateFinancials(ctx context.Context, id string, estimatedCost, budget float64) error {
	return r.mutate(ctx, id, events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  id,
		EntityID:   id,
		Action:     "updated",
	}, `UPDATE projects SET estimated_cost = $2, budget = $3 WHERE id = $1`, estimatedCost, budget)
}

// ProjectDetails holds the identity/contact fields a partial update may
// touch. Nil fields are left unchanged; the project id itself is never
// updatable.
type ProjectDetails struct {
	ProjectName   *string
	ClientName    *string
	ClientPhone   *string
	ClientEmail   *string
	ClientAddress *string
	ClientNotes   *string
	Location      *string
	IsComplete    *bool
}

// UpdateDetails applies a partial overwrite of identity/contact fields.
func (r *ProjectRepository) UpdateDetails(ctx context.Context, id string, d ProjectDetails) error {
	sets := make([]string, 0, 8)
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if d.ProjectName != nil {
		add("project_name", *d.ProjectName)
	}
	if d.ClientName != nil {
		add("client_name", *d.ClientName)
	}
	if d.ClientPhone != nil {
		add("client_phone", *d.ClientPhone)
	}
	if d.ClientEmail != nil {
		add("client_email", *d.ClientEmail)
	}
	if d.ClientAddress != nil {
		add("client_address", *d.ClientAddress)
	}
	if d.ClientNotes != nil {
		add("client_notes", *d.ClientNotes)
	}
	if d.Location != nil {
		add("location", *d.Location)
	}
	if d.IsComplete != nil {
		add("is_complete", *d.IsComplete)
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $1`, strings.Join(sets, ", "))
	return r.mutate(ctx, id, events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  id,
		EntityID:   id,
		Action:     "updated",
	}, query, args[1:]...)
}

// AssignWorker adds a worker id to the project's worker set. Assigning an
// already-present id is a no-op.
func (r *ProjectRepository) AssignWorker(ctx context.Context, id, workerID string) error {
	return r.mutate(ctx, id, events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  id,
		EntityID:   id,
		Action:     "updated",
	}, `
		UPDATE projects
		SET worker_ids = array_append(worker_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(worker_ids))
	`, workerID)
}

// AssignManager adds a manager id to the project's manager set, idempotently.
func (r *ProjectRepository) AssignManager(ctx context.Context, id, managerID string) error {
	return r.mutate(ctx, id, events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  id,
		EntityID:   id,
		Action:     "updated",
	}, `
		UPDATE projects
		SET manager_ids = array_append(manager_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(manager_ids))
	`, managerID)
}

// SetCompletionPercentage overwrites the derived progress value.
func (r *ProjectRepository) SetCompletionPercentage(ctx context.Context, id string, pct int) error {
	return r.mutate(ctx, id, events.Change{
		Collection: events.CollectionProjects,
		ProjectID:  id,
		EntityID:   id,
		Action:     "updated",
	}, `UPDATE projects SET completion_percentage = $2 WHERE id = $1`, pct)
}

// mutate runs an UPDATE on a single project and records the change event in
// the same transaction. Statements must take the project id as $1.
func (r *ProjectRepository) mutate(ctx context.Context, id string, change events.Change, query string, args ...any) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		r.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the project doesn't exist or an idempotent write matched
		// nothing; distinguish so absent ids surface as not-found.
		exists, err := r.exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return tx.Commit(ctx)
	}

	ev := &outbox.Event{
		AggregateType: "project",
		AggregateID:   id,
		RoutingKey:    change.RoutingKey(),
		Payload:       change.Marshal(),
	}
	if err := r.outbox.InsertEvent(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.RecordDBQueryDuration("update", "projects", time.Since(start))
	return nil
}

func (r *ProjectRepository) exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ErrDuplicateID reports a generated project id collision.
var ErrDuplicateID = errors.New("duplicate project id")
