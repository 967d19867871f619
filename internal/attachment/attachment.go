// Package attachment stores uploaded record images and reclaims them when a
// record is deleted or its image is replaced.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"
)

// PublicPrefix is the route prefix stored paths are served under.
const PublicPrefix = "uploads"

var (
	ErrMissing      = errors.New("attachment not found")
	ErrOutsideStore = errors.New("path outside attachment store")
	ErrEmptyPath    = errors.New("empty attachment path")
)

// Upload is either a provided file or NoFile.
type Upload struct {
	file *multipart.FileHeader
}

// NoFile is the Upload of a request that carried no file.
var NoFile = Upload{}

// FileProvided wraps an uploaded file header.
func FileProvided(fh *multipart.FileHeader) Upload {
	return Upload{file: fh}
}

func (u Upload) Present() bool { return u.file != nil }

func (u Upload) File() *multipart.FileHeader { return u.file }

// RemoveResult is the outcome of a best-effort removal. Remove never returns
// an error for callers to propagate; Err is there to be logged.
type RemoveResult struct {
	Path    string
	Removed bool
	Err     error
}

// Object is a stored attachment opened for reading.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Manager persists uploads and removes them again.
type Manager interface {
	// Store writes the upload and returns its slash-separated stored path.
	Store(ctx context.Context, upload Upload) (string, error)
	Remove(ctx context.Context, storedPath string) RemoveResult
	// Open returns the attachment stored under name (a bare file name).
	Open(ctx context.Context, name string) (*Object, error)
	// List returns the stored paths of every attachment.
	List(ctx context.Context) ([]string, error)
}

// StoredName derives the collision-resistant file name for an upload:
// epoch milliseconds, an underscore, and the original base name.
func StoredName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), base)
}

// validName reports whether name is a bare file name safe to resolve inside
// a store.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// publicPath is the stored path of name, as kept in records.
func publicPath(name string) string {
	return path.Join(PublicPrefix, name)
}

// publicName extracts the bare file name from an uploads/<name> path.
func publicName(storedPath string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(storedPath, "\\", "/"))
	dir, name := path.Split(cleaned)
	if strings.TrimSuffix(dir, "/") != PublicPrefix || !validName(name) {
		return "", fmt.Errorf("%w: %s", ErrOutsideStore, storedPath)
	}
	return name, nil
}

func removeFailed(p string, err error) RemoveResult {
	return RemoveResult{Path: p, Err: err}
}
