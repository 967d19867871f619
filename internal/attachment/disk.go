package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const tempPrefix = ".upload-"

// DiskStore keeps every attachment flat in one directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: filepath.Clean(dir), now: time.Now}
}

// Dir returns the directory attachments are written to.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Store(ctx context.Context, upload Upload) (string, error) {
	if !upload.Present() {
		return "", fmt.Errorf("store: %w", ErrEmptyPath)
	}
	fh := upload.File()
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := StoredName(s.now(), fh.Filename)

	// half-written uploads carry tempPrefix so List never reports them
	dst, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	tmp := dst.Name()
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename temp file: %w", err)
	}
	return publicPath(name), nil
}

func (s *DiskStore) Remove(ctx context.Context, storedPath string) RemoveResult {
	if storedPath == "" {
		return removeFailed(storedPath, ErrEmptyPath)
	}
	full, err := s.resolve(storedPath)
	if err != nil {
		return removeFailed(storedPath, err)
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return removeFailed(storedPath, fmt.Errorf("%w: %s", ErrMissing, storedPath))
		}
		return removeFailed(storedPath, fmt.Errorf("remove file: %w", err))
	}
	return RemoveResult{Path: storedPath, Removed: true}
}

func (s *DiskStore) Open(ctx context.Context, name string) (*Object, error) {
	if !validName(name) {
		return nil, ErrMissing
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrMissing
	}
	return &Object{Body: f, Size: info.Size(), ContentType: contentType(name)}, nil
}

func (s *DiskStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		out = append(out, publicPath(e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// resolve maps a stored path back to a file directly inside the store
// directory. Paths are client supplied on update, so anything else is refused.
// Besides uploads/<name>, paths spelled with the store directory itself are
// accepted.
func (s *DiskStore) resolve(storedPath string) (string, error) {
	if name, err := publicName(storedPath); err == nil {
		return filepath.Join(s.dir, name), nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(storedPath))
	if filepath.Dir(cleaned) != s.dir || !validName(filepath.Base(cleaned)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideStore, storedPath)
	}
	return cleaned, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
