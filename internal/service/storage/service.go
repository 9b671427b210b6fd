// Package storage implements the project file store: uploads keyed by
// projects/{projectId}/{timestamp}_{filename}, served back through a
// public download URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"velanspaces/internal/repository"
	"velanspaces/pkg/config"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds upload limit")

// ErrScopeDenied is returned when the caller's token does not cover the
// target project.
var ErrScopeDenied = errors.New("project not in caller scope")

type Service struct {
	files  *repository.FileRepository
	cfg    config.StorageConfig
	logger *zap.Logger
}

func NewService(files *repository.FileRepository, cfg config.StorageConfig, logger *zap.Logger) *Service {
	return &Service{
		files:  files,
		cfg:    cfg,
		logger: logger,
	}
}

// Upload stores the file and returns its public download URL. Callers that
// attach the URL to a feed entry or design must only issue that write after
// Upload succeeds.
func (s *Service) Upload(ctx context.Context, caller util.Principal, projectID, filename, contentType string, data []byte) (string, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionPostUpdate); err != nil {
		return "", err
	}
	if !caller.CanAccessProject(projectID) {
		return "", ErrScopeDenied
	}

	if max := s.cfg.MaxUploadMB; max > 0 && len(data) > max*1024*1024 {
		return "", ErrTooLarge
	}

	key := fmt.Sprintf("projects/%s/%d_%s", projectID, time.Now().UnixMilli(), sanitize(filename))
	f := &repository.StoredFile{
		Key:         key,
		ProjectID:   projectID,
		ContentType: contentType,
		Data:        data,
	}
	if err := s.files.Put(ctx, f); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return s.DownloadURL(key), nil
}

// Fetch returns a stored file by key.
func (s *Service) Fetch(ctx context.Context, key string) (*repository.StoredFile, error) {
	return s.files.Get(ctx, key)
}

// DownloadURL builds the public URL for a stored key.
func (s *Service) DownloadURL(key string) string {
	return fmt.Sprintf("%s/files/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), key)
}

// sanitize strips path separators from client-supplied filenames.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
