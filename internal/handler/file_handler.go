package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/service/storage"
)

type FileHandler struct {
	svc    *storage.Service
	logger *zap.Logger
}

func NewFileHandler(svc *storage.Service, logger *zap.Logger) *FileHandler {
	return &FileHandler{svc: svc, logger: logger}
}

// Upload accepts a multipart form with a single "file" field and stores it
// under the calling project's prefix. Responds with the download URL used
// as update/design content.
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}

	url, err := h.svc.Upload(
		c.Request.Context(),
		principal(c),
		c.Param("id"),
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
			return
		}
		h.logger.Error("Upload failed",
			zap.String("project_id", c.Param("id")),
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// Download streams a stored blob. The route is public the way signed
// storage URLs are; keys are unguessable enough for feed media.
func (h *FileHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	file, err := h.svc.Fetch(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, file.Data)
}
