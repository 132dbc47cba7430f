// Package cloudwriter buffers export files and uploads them to object storage.
package cloudwriter

import (
	"context"
	"fmt"

	"github.com/chrisdamba/foodstore/internal/models"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// NewWriterFactory returns the factory for the configured provider.
func NewWriterFactory(ctx context.Context, cfg models.CloudStorageConfig) (CloudWriterFactory, error) {
	switch cfg.Provider {
	case "s3", "":
		return NewS3WriterFactory(ctx, cfg.Region)
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
	}
}
