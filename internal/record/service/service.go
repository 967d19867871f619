package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/repository"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoAttachmentStore is returned when an attachment-bearing kind is served
// without an attachment manager.
var ErrNoAttachmentStore = errors.New("no attachment store configured")

// Service defines the record operations used by the handler layer. One
// instance serves one kind.
type Service interface {
	Kind() record.Kind
	Create(ctx context.Context, body record.Record, upload attachment.Upload) (*repository.InsertResult, error)
	List(ctx context.Context) ([]record.Record, error)
	// Get returns nil, nil when no record has the id.
	Get(ctx context.Context, id string) (record.Record, error)
	// Update returns the acknowledgement together with the fields written.
	Update(ctx context.Context, id string, body record.Record, upload attachment.Upload) (*repository.UpdateResult, record.Record, error)
	Delete(ctx context.Context, id string) (*repository.DeleteResult, error)
}

// New returns a Service for kind over repo. files may be nil for kinds
// without attachments.
func New(kind record.Kind, repo repository.Repository, files attachment.Manager) Service {
	return &recordService{kind: kind, repo: repo, files: files, now: time.Now}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(kind record.Kind, files attachment.Manager) Service {
	return New(kind, repository.NewMemoryRepo(), files)
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(kind record.Kind, col *mongo.Collection, files attachment.Manager) Service {
	return New(kind, repository.NewMongoRepo(col), files)
}

type recordService struct {
	kind  record.Kind
	repo  repository.Repository
	files attachment.Manager
	now   func() time.Time
}

func (s *recordService) Kind() record.Kind { return s.kind }

func (s *recordService) Create(ctx context.Context, body record.Record, upload attachment.Upload) (*repository.InsertResult, error) {
	var stored string
	if s.kind.HasAttachment() {
		if !upload.Present() {
			s.count("create", "invalid")
			return nil, record.MissingFile(s.kind.AttachmentField)
		}
		p, err := s.store(ctx, upload)
		if err != nil {
			s.count("create", "error")
			return nil, err
		}
		stored = p
	}

	res, err := s.repo.Insert(ctx, s.kind.Build(body, stored, s.now()))
	if err != nil {
		// the stored file stays behind as an orphan; vrdctl orphans reclaims it
		if stored != "" {
			logger.With("kind", s.kind.Name, "path", stored).Warnf("record insert failed after attachment was stored")
		}
		s.count("create", "error")
		return nil, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}
	s.count("create", "ok")
	return res, nil
}

func (s *recordService) List(ctx context.Context) ([]record.Record, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		s.count("list", "error")
		return nil, fmt.Errorf("list %s: %w", s.kind.Name, err)
	}
	s.count("list", "ok")
	return list, nil
}

func (s *recordService) Get(ctx context.Context, id string) (record.Record, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.count("get", "error")
		return nil, fmt.Errorf("get %s %s: %w", s.kind.Name, id, err)
	}
	if rec == nil {
		s.count("get", "absent")
		return nil, nil
	}
	s.count("get", "ok")
	return rec, nil
}

func (s *recordService) Update(ctx context.Context, id string, body record.Record, upload attachment.Upload) (*repository.UpdateResult, record.Record, error) {
	if _, err := record.ParseID(id); err != nil {
		s.count("update", "error")
		return nil, nil, fmt.Errorf("update %s: %w", s.kind.Name, err)
	}
	fields := body.WithoutID()

	var stored string
	if s.kind.HasAttachment() && upload.Present() {
		p, err := s.store(ctx, upload)
		if err != nil {
			s.count("update", "error")
			return nil, nil, err
		}
		stored = p
		// the previous path is whatever the client echoed back
		if old := fields.String(s.kind.AttachmentField); old != "" {
			s.remove(ctx, old)
		}
		fields[s.kind.AttachmentField] = stored
	}

	res, err := s.repo.UpdateByID(ctx, id, fields)
	if err != nil {
		s.count("update", "error")
		return nil, nil, fmt.Errorf("update %s %s: %w", s.kind.Name, id, err)
	}
	s.count("update", res.Outcome.String())
	return res, fields, nil
}

func (s *recordService) Delete(ctx context.Context, id string) (*repository.DeleteResult, error) {
	if !s.kind.HasAttachment() {
		res, err := s.repo.DeleteByID(ctx, id)
		if err != nil {
			s.count("delete", "error")
			return nil, fmt.Errorf("delete %s %s: %w", s.kind.Name, id, err)
		}
		s.count("delete", "ok")
		return res, nil
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.count("delete", "error")
		return nil, fmt.Errorf("delete %s %s: %w", s.kind.Name, id, err)
	}
	if rec == nil {
		s.count("delete", "not_found")
		return nil, fmt.Errorf("delete %s %s: %w", s.kind.Name, id, record.ErrNotFound)
	}
	res, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.count("delete", "error")
		return nil, fmt.Errorf("delete %s %s: %w", s.kind.Name, id, err)
	}
	if p := rec.String(s.kind.AttachmentField); p != "" {
		s.remove(ctx, p)
	}
	s.count("delete", "ok")
	return res, nil
}

func (s *recordService) store(ctx context.Context, upload attachment.Upload) (string, error) {
	if s.files == nil {
		return "", ErrNoAttachmentStore
	}
	p, err := s.files.Store(ctx, upload)
	if err != nil {
		return "", fmt.Errorf("store %s attachment: %w", s.kind.Name, err)
	}
	return p, nil
}

// remove deletes a stored attachment best-effort. Failures are logged and
// counted, never returned.
func (s *recordService) remove(ctx context.Context, p string) attachment.RemoveResult {
	if s.files == nil {
		return attachment.RemoveResult{Path: p, Err: ErrNoAttachmentStore}
	}
	res := s.files.Remove(ctx, p)
	log := logger.With("kind", s.kind.Name, "path", p)
	switch {
	case res.Removed:
		metrics.AttachmentRemovals.WithLabelValues(s.kind.Name, "removed").Inc()
		log.Debugf("attachment removed")
	case errors.Is(res.Err, attachment.ErrMissing):
		metrics.AttachmentRemovals.WithLabelValues(s.kind.Name, "missing").Inc()
		log.Warnf("attachment already gone")
	default:
		metrics.AttachmentRemovals.WithLabelValues(s.kind.Name, "failed").Inc()
		log.Warnf("attachment removal failed: %v", res.Err)
	}
	return res
}

func (s *recordService) count(op, outcome string) {
	metrics.RecordOperations.WithLabelValues(s.kind.Name, op, outcome).Inc()
}
