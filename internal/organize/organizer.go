// Package organize renames media files after their capture date and files
// them into review buckets. It also normalizes date-prefixed names.
package organize

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"media-dater/internal/media"
	"media-dater/internal/walk"
)

// Bucket is the directory, under the organized root, a file is moved to.
type Bucket string

const (
	// BucketDone holds files dated by a capture tag.
	BucketDone Bucket = "done"
	// BucketCheck holds files dated only by the filesystem and needing review.
	BucketCheck Bucket = "to_check"
)

// BucketFor returns the bucket for a date read from tag.
func BucketFor(tag string) Bucket {
	if tag == media.TagFileModifyDate {
		return BucketCheck
	}
	return BucketDone
}

// NewName returns the file name for a capture date, keeping ext as is.
func NewName(ts media.Timestamp, ext string) string {
	return fmt.Sprintf("%04d-%02d-%02d-%02d%02d%02d%s", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second, ext)
}

// Reader supplies time metadata for files.
type Reader interface {
	ReadTimeMetadata(paths ...string) ([]media.Record, error)
}

// Plan is the move decided for one file. Paths are relative to the root.
type Plan struct {
	Source    string
	Dest      string
	Date      media.Timestamp
	Tag       string
	Bucket    Bucket
	Duplicate bool
}

// Organizer plans and, when executing, performs the moves for the files at
// the top level of root.
type Organizer struct {
	root    string
	reader  Reader
	execute bool
	logger  *zap.Logger

	claimed map[string]bool
	plans   []Plan
}

// New returns an Organizer. Nothing is moved unless execute is true.
func New(root string, reader Reader, execute bool, logger *zap.Logger) *Organizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Organizer{
		root:    root,
		reader:  reader,
		execute: execute,
		logger:  logger,
		claimed: make(map[string]bool),
	}
}

// Plans returns every decision made so far, duplicates included.
func (o *Organizer) Plans() []Plan {
	return o.plans
}

// Organize handles one file. It is a walk.Handler.
func (o *Organizer) Organize(path string) (walk.Result, error) {
	name := filepath.Base(path)
	kind := media.Classify(name)
	if kind == media.KindUnknown {
		return walk.Result{Status: walk.Ignored}, nil
	}

	recs, err := o.reader.ReadTimeMetadata(path)
	if err != nil {
		return walk.Result{}, err
	}
	if len(recs) != 1 {
		return walk.Result{}, fmt.Errorf("expected one metadata record for %s, got %d", path, len(recs))
	}

	date, tag, err := media.CaptureDate(kind, recs[0])
	if err != nil {
		return walk.Result{}, err
	}

	bucket := BucketFor(tag)
	dest := filepath.Join(o.root, string(bucket), NewName(date, filepath.Ext(name)))
	dest, dup, err := Resolve(path, dest, o.claimed)
	if err != nil {
		return walk.Result{}, err
	}

	plan := Plan{
		Source:    o.rel(path),
		Dest:      o.rel(dest),
		Date:      date,
		Tag:       tag,
		Bucket:    bucket,
		Duplicate: dup,
	}
	o.plans = append(o.plans, plan)

	if dup {
		o.logger.Info("skipping duplicate", zap.String("path", plan.Source), zap.String("existing", plan.Dest))
		return walk.Result{Status: walk.Skipped}, nil
	}
	o.claimed[dest] = true

	if o.execute {
		if err := Move(path, dest); err != nil {
			return walk.Result{}, err
		}
		o.logger.Info("moved", zap.String("from", plan.Source), zap.String("to", plan.Dest), zap.String("tag", tag))
	}
	return walk.Result{Status: walk.Updated, Old: plan.Source, New: plan.Dest}, nil
}

func (o *Organizer) rel(path string) string {
	if rel, err := filepath.Rel(o.root, path); err == nil {
		return rel
	}
	return path
}

// OrganizedReport returns the name of the organize report for stamp.
func OrganizedReport(stamp string) string {
	return stamp + "_organized.csv"
}

// WriteReport writes every plan as a CSV row to path.
func (o *Organizer) WriteReport(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"source", "destination", "date", "tag", "action"}); err != nil {
		return err
	}
	for _, p := range o.plans {
		action := "moved"
		switch {
		case p.Duplicate:
			action = "duplicate"
		case !o.execute:
			action = "would move"
		}
		if err := w.Write([]string{p.Source, p.Dest, p.Date.String(), p.Tag, action}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// Summary returns the closing lines for a run.
func (o *Organizer) Summary() string {
	moved, dups := 0, 0
	for _, p := range o.plans {
		if p.Duplicate {
			dups++
		} else {
			moved++
		}
	}

	var b strings.Builder
	if o.execute {
		fmt.Fprintf(&b, "Organized %d files\n", moved)
		if dups > 0 {
			fmt.Fprintf(&b, "Skipped %d duplicates\n", dups)
		}
	} else {
		fmt.Fprintf(&b, "[DRY RUN] Would organize %d files\n", moved)
		if dups > 0 {
			fmt.Fprintf(&b, "[DRY RUN] Would skip %d duplicates\n", dups)
		}
	}
	return b.String()
}
