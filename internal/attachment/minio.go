package attachment

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/storage"
)

// objectStore is the part of storage.MinIOStorage the attachment store uses.
type objectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error)
	StatFile(ctx context.Context, key string) (*storage.ObjectInfo, error)
	RemoveFile(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

// MinIOStore keeps attachments as objects in one bucket. Stored paths keep
// the "uploads/<name>" shape so records look the same under either backend.
type MinIOStore struct {
	objects  objectStore
	notFound func(error) bool
	now      func() time.Time
}

func NewMinIOStore(s *storage.MinIOStorage) *MinIOStore {
	return newMinIOStore(s, storage.IsNotFound)
}

func newMinIOStore(objects objectStore, notFound func(error) bool) *MinIOStore {
	return &MinIOStore{objects: objects, notFound: notFound, now: time.Now}
}

func (s *MinIOStore) Store(ctx context.Context, upload Upload) (string, error) {
	if !upload.Present() {
		return "", fmt.Errorf("store: %w", ErrEmptyPath)
	}
	fh := upload.File()
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := StoredName(s.now(), fh.Filename)
	if err := s.objects.UploadFile(ctx, key, src, fh.Size, contentType(key)); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return path.Join(PublicPrefix, key), nil
}

func (s *MinIOStore) Remove(ctx context.Context, storedPath string) RemoveResult {
	if storedPath == "" {
		return removeFailed(storedPath, ErrEmptyPath)
	}
	key, err := s.key(storedPath)
	if err != nil {
		return removeFailed(storedPath, err)
	}
	if _, err := s.objects.StatFile(ctx, key); err != nil {
		if s.notFound(err) {
			return removeFailed(storedPath, fmt.Errorf("%w: %s", ErrMissing, storedPath))
		}
		return removeFailed(storedPath, fmt.Errorf("stat object: %w", err))
	}
	if err := s.objects.RemoveFile(ctx, key); err != nil {
		return removeFailed(storedPath, fmt.Errorf("remove object: %w", err))
	}
	return RemoveResult{Path: storedPath, Removed: true}
}

func (s *MinIOStore) Open(ctx context.Context, name string) (*Object, error) {
	if !validName(name) {
		return nil, ErrMissing
	}
	body, info, err := s.objects.DownloadFile(ctx, name)
	if err != nil {
		if s.notFound(err) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("download object: %w", err)
	}
	ct := info.ContentType
	if ct == "" {
		ct = contentType(name)
	}
	return &Object{Body: body, Size: info.Size, ContentType: ct}, nil
}

func (s *MinIOStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.objects.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, path.Join(PublicPrefix, k))
	}
	return out, nil
}

func (s *MinIOStore) key(storedPath string) (string, error) {
	return publicName(storedPath)
}
