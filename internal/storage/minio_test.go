package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/modelhub/inventory-server/internal/config"
)

func TestNewImageStoreRequiresEndpoint(t *testing.T) {
	_, err := NewImageStore(context.Background(), config.MinIOConfig{Bucket: "model-images"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewImageStoreRejectsBadEndpoint(t *testing.T) {
	// minio.New validates the endpoint before any network call
	_, err := NewImageStore(context.Background(), config.MinIOConfig{Endpoint: "http://with-scheme:9000", Bucket: "model-images"})
	if err == nil {
		t.Fatal("expected an error for an endpoint with a scheme")
	}
}
