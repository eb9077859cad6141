package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/assets"
)

const (
	uploadField      = "file"
	logoCacheControl = "public, max-age=604800, immutable"
)

// UploadLogo handles POST /api/upload-public-logo and POST /api/admin/upload-logo
func (h *UploadHandler) UploadLogo(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploader.MaxBytes()+64<<10)

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: h.tooLargeMessage()})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "No file uploaded"})
		return
	}

	url, err := h.save(c.Request.Context(), fh)
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload logo")
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{URL: url})
}

// ServeLogo handles GET /logo/:key
func (h *UploadHandler) ServeLogo(c *gin.Context) {
	logo, err := h.uploader.Open(c.Request.Context(), c.Param("key"))
	if errors.Is(err, assets.ErrLogoMissing) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to load logo", slog.String("key", c.Param("key")), slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Cache-Control", logoCacheControl)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, logo.ContentType, logo.Bytes)
}

// save stores one uploaded file. Validation failures come back as invalid input.
func (h *UploadHandler) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.uploader.MaxBytes() {
		return "", domain.InvalidInput(h.tooLargeMessage())
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return h.store(ctx, f, fh.Size)
}

func (h *UploadHandler) store(ctx context.Context, r io.Reader, size int64) (string, error) {
	url, err := h.uploader.Save(ctx, r)
	switch {
	case errors.Is(err, assets.ErrTooLarge):
		return "", domain.InvalidInput(h.tooLargeMessage())
	case errors.Is(err, assets.ErrNotAnImage):
		return "", domain.InvalidInput("File must be an image")
	case errors.Is(err, assets.ErrEmptyFile):
		return "", domain.InvalidInput("File is empty")
	case err != nil:
		return "", err
	}

	h.logger.Info("Logo uploaded", slog.String("url", url), slog.Int64("size", size))
	return url, nil
}

func (h *UploadHandler) tooLargeMessage() string {
	limit := h.uploader.MaxBytes()
	if limit >= 1<<20 {
		return fmt.Sprintf("File too large (max %dMB)", limit>>20)
	}
	return fmt.Sprintf("File too large (max %dKB)", limit>>10)
}
