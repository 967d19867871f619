package attachment

import (
	"context"
	"fmt"
	"os"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/config"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/storage"
)

// FromConfig builds the attachment backend selected by ATTACHMENT_BACKEND.
func FromConfig(ctx context.Context, cfg *config.Config) (Manager, error) {
	switch cfg.Uploads.Backend {
	case config.BackendMinIO:
		s, err := storage.NewMinIOStorage(&cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio bucket %s: %w", s.Bucket(), err)
		}
		return NewMinIOStore(s), nil
	case config.BackendDisk:
		if err := os.MkdirAll(cfg.Uploads.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
		return NewDiskStore(cfg.Uploads.Dir), nil
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", cfg.Uploads.Backend)
	}
}
