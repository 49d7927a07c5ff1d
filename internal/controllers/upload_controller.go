package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ecoverse/internal/apperr"
)

// multipartOverhead is the slack allowed on top of MaxBytes for form
// boundaries and headers.
const multipartOverhead = 1 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// UploadConfig says where images go and how large they may be.
type UploadConfig struct {
	Dir        string
	MaxBytes   int64
	PublicPath string // URL prefix the directory is served under
}

// UploadImage stores the "image" form file and returns its public URL.
// Oversized files are rejected outright.
func (h *Handler) UploadImage(c *gin.Context) {
	if _, ok := h.mustCaller(c); !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Uploads.MaxBytes+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteError(c, h.tooLarge())
			return
		}
		h.WriteError(c, invalid("image file is required"))
		return
	}
	if file.Size > h.Uploads.MaxBytes {
		h.WriteError(c, h.tooLarge())
		return
	}

	src, err := file.Open()
	if err != nil {
		h.WriteError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	mime, err := mimetype.DetectReader(src)
	src.Close()
	if err != nil {
		h.WriteError(c, fmt.Errorf("detect upload type: %w", err))
		return
	}
	if !isAllowedImage(mime) {
		h.WriteError(c, invalid("unsupported file type %s", mime.String()))
		return
	}

	name := uuid.NewString() + mime.Extension()
	if err := c.SaveUploadedFile(file, filepath.Join(h.Uploads.Dir, name)); err != nil {
		h.WriteError(c, fmt.Errorf("save upload: %w", err))
		return
	}

	h.logger().WithField("file", name).WithField("bytes", file.Size).Info("image uploaded")
	c.JSON(http.StatusCreated, gin.H{"url": path.Join(h.Uploads.PublicPath, name)})
}

func (h *Handler) tooLarge() error {
	return fmt.Errorf("%w: images are limited to %d bytes", apperr.ErrPayloadTooLarge, h.Uploads.MaxBytes)
}

func isAllowedImage(m *mimetype.MIME) bool {
	for _, t := range allowedImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
