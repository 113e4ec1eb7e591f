package handler

import (
	"context"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelhub/inventory-server/internal/inventory/service"
)

// ImageStore is the object storage used for model images.
type ImageStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ImageURLExpiry is how long a returned image URL stays valid.
const ImageURLExpiry = 7 * 24 * time.Hour

// maxImageSize caps uploads at 10 MiB.
const maxImageSize = 10 << 20

// RegisterImageRoutes registers POST /models/:id/image. The model must exist;
// the returned URL is meant to be saved through /update-model/:id.
func RegisterImageRoutes(r gin.IRoutes, svc service.Service, store ImageStore) {
	r.POST("/models/:id/image", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		m, err := svc.GetModel(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
			return
		}

		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"image\" is required"})
			return
		}
		if fh.Size > maxImageSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()

		key := path.Join("models", id.Hex(), path.Base(fh.Filename))
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := store.UploadFile(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
			fail(c, err)
			return
		}
		url, err := store.GetPresignedURL(c.Request.Context(), key, ImageURLExpiry)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
	})
}
