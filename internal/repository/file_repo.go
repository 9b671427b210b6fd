package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"velanspaces/pkg/metrics"
)

// FileRepository is the blob store for uploaded project files (photos,
// videos, payment screenshots, design assets). Keys follow
// projects/{projectId}/{timestamp}_{filename}.
type FileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFileRepository(db *pgxpool.Pool, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

type StoredFile struct {
	Key         string
	ProjectID   string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

func (r *FileRepository) Put(ctx context.Context, f *StoredFile) error {
	start := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO project_files (key, project_id, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, f.Key, f.ProjectID, f.ContentType, f.Data)
	if err != nil {
		r.logger.Error("Failed to store file",
			zap.String("key", f.Key),
			zap.Int("size", len(f.Data)),
			zap.Error(err),
		)
		metrics.IncrementFilesUploaded("failed")
		return err
	}

	metrics.RecordDBQueryDuration("insert", "project_files", time.Since(start))
	metrics.IncrementFilesUploaded("success")
	r.logger.Info("File stored",
		zap.String("key", f.Key),
		zap.String("project_id", f.ProjectID),
		zap.Int("size", len(f.Data)),
	)
	return nil
}

func (r *FileRepository) Get(ctx context.Context, key string) (*StoredFile, error) {
	var f StoredFile
	err := r.db.QueryRow(ctx, `
		SELECT key, project_id, content_type, data, created_at
		FROM project_files
		WHERE key = $1
	`, key).Scan(&f.Key, &f.ProjectID, &f.ContentType, &f.Data, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}
