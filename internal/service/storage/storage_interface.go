package storage

import (
	"context"
	"fmt"

	"github.com/openlms/plagiarism-service/internal/config"
)

// ObjectStorage resolves a submission file path to its raw bytes. The
// comparison pipeline only ever reads.
type ObjectStorage interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// New selects the backend by config: the shared uploads directory for
// single-host deployments, MinIO when files live in object storage.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStorage(cfg.Local.BaseDir)
	case "minio":
		return NewMinIOStorage(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
