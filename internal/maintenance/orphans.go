// Package maintenance reconciles stored attachments with the records that
// reference them. Attachment paths are weak references, so a crash between
// the file write and the record write (or a failed best-effort removal)
// leaves files nobody points at, and a lost file leaves a dangling path.
package maintenance

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/repository"
)

// Source is one collection to scan.
type Source struct {
	Kind record.Kind
	Repo repository.Repository
}

// Dangling is a record whose attachment path has no stored file.
type Dangling struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Report is the result of a scan and, optionally, a prune.
type Report struct {
	Stored     int        `json:"stored"`
	Referenced int        `json:"referenced"`
	Orphans    []string   `json:"orphans"`
	Dangling   []Dangling `json:"dangling"`
	Pruned     []string   `json:"pruned,omitempty"`
	Failed     []string   `json:"failed,omitempty"`
}

// Scan lists every stored attachment and every referenced path. Kinds
// without an attachment field are skipped.
func Scan(ctx context.Context, sources []Source, files attachment.Manager) (*Report, error) {
	stored, err := files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	present := make(map[string]bool, len(stored))
	for _, p := range stored {
		present[normalize(p)] = true
	}

	rep := &Report{Stored: len(stored), Orphans: []string{}, Dangling: []Dangling{}}
	referenced := map[string]bool{}
	for _, src := range sources {
		if !src.Kind.HasAttachment() {
			continue
		}
		recs, err := src.Repo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.Kind.Name, err)
		}
		for _, rec := range recs {
			p := rec.String(src.Kind.AttachmentField)
			if p == "" {
				continue
			}
			np := normalize(p)
			referenced[np] = true
			if !present[np] {
				rep.Dangling = append(rep.Dangling, Dangling{Kind: src.Kind.Name, ID: rec.ID().Hex(), Path: p})
			}
		}
	}
	rep.Referenced = len(referenced)

	for _, p := range stored {
		if !referenced[normalize(p)] {
			rep.Orphans = append(rep.Orphans, p)
		}
	}
	sort.Strings(rep.Orphans)
	sort.Slice(rep.Dangling, func(i, j int) bool {
		if rep.Dangling[i].Kind != rep.Dangling[j].Kind {
			return rep.Dangling[i].Kind < rep.Dangling[j].Kind
		}
		return rep.Dangling[i].ID < rep.Dangling[j].ID
	})
	return rep, nil
}

// Prune removes the orphans found by Scan through the attachment manager.
func Prune(ctx context.Context, files attachment.Manager, rep *Report) {
	for _, p := range rep.Orphans {
		if res := files.Remove(ctx, p); res.Removed {
			rep.Pruned = append(rep.Pruned, p)
		} else {
			rep.Failed = append(rep.Failed, p)
		}
	}
}

func normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
