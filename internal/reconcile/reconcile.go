// Package reconcile compares the date a filename implies with the date in
// the file's metadata and rewrites the metadata when they disagree.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"media-dater/internal/exiftool"
	"media-dater/internal/filedate"
	"media-dater/internal/media"
)

// WriteTag is the tag a correction overwrites.
const WriteTag = "DateTimeOriginal"

// AuditSuffix is appended to a file's path to name its pre-write metadata
// dump.
const AuditSuffix = "_metadata.txt"

// Tool is the subset of the exiftool client the reconciler needs.
type Tool interface {
	ReadTimeMetadata(paths ...string) ([]media.Record, error)
	ReadText(path string) (string, error)
	WriteMetadata(path string, tags map[string]string, flags ...string) (string, error)
}

// WriteError reports a write that exiftool rejected.
type WriteError struct {
	Path  string
	Lines []string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("exiftool did not update %s: %s", e.Path, strings.Join(e.Lines, "; "))
}

// Status is what happened to a file.
type Status int

const (
	// StatusIgnored means the file is not a supported media kind.
	StatusIgnored Status = iota
	// StatusUnchanged means the metadata already agreed with the filename.
	StatusUnchanged
	// StatusCorrected means the metadata was rewritten.
	StatusCorrected
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusUnchanged:
		return "unchanged"
	case StatusCorrected:
		return "corrected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome describes the result of reconciling one file. Old is empty when
// the metadata carried no usable date.
type Outcome struct {
	Status   Status
	Filename filedate.PartialDate
	Old      string
	New      string
}

// Decision is the verdict for one file.
type Decision struct {
	Correct bool
	Target  media.Timestamp
}

// Agrees reports whether meta matches the filename date on every field the
// filename provides: the year, then the month, then the day. Order and time
// of day are never compared.
func Agrees(name filedate.PartialDate, meta media.Timestamp) bool {
	if meta.Year != name.Year {
		return false
	}
	if name.Precision >= filedate.PrecisionMonth && meta.Month != name.Month {
		return false
	}
	if name.Precision >= filedate.PrecisionDay && meta.Day != name.Day {
		return false
	}
	return true
}

// Decide returns whether the metadata needs rewriting. hasMeta is false
// when the file has no comparable metadata date, which always forces a
// correction.
func Decide(name filedate.PartialDate, meta media.Timestamp, hasMeta bool) Decision {
	if hasMeta && Agrees(name, meta) {
		return Decision{}
	}
	return Decision{Correct: true, Target: name.Materialize()}
}

// Reconciler applies decisions through an exiftool session.
type Reconciler struct {
	tool   Tool
	logger *zap.Logger
}

// New returns a Reconciler that reads and writes through tool.
func New(tool Tool, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{tool: tool, logger: logger}
}

// Reconcile processes one file. Files whose name carries no usable date
// fail with filedate.ErrNoMatch or a *filedate.DateRangeError and are left
// untouched. Before any write, the file's full metadata listing is saved
// next to it.
func (r *Reconciler) Reconcile(path string) (Outcome, error) {
	name := filepath.Base(path)
	kind := media.Classify(name)
	if kind == media.KindUnknown {
		return Outcome{Status: StatusIgnored}, nil
	}

	guessed, err := filedate.Guess(name)
	if err != nil {
		return Outcome{}, err
	}

	recs, err := r.tool.ReadTimeMetadata(path)
	if err != nil {
		return Outcome{}, err
	}
	if len(recs) != 1 {
		return Outcome{}, fmt.Errorf("expected one metadata record for %s, got %d", path, len(recs))
	}

	meta, tag, err := media.CaptureDate(kind, recs[0])
	hasMeta := true
	if errors.Is(err, media.ErrNoDateTag) {
		hasMeta = false
	} else if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Status: StatusUnchanged, Filename: guessed}
	if hasMeta {
		out.Old = meta.String()
	}

	d := Decide(guessed, meta, hasMeta)
	if !d.Correct {
		r.logger.Debug("metadata matches filename",
			zap.String("path", path),
			zap.String("tag", tag),
			zap.Stringer("filename_date", guessed),
		)
		return out, nil
	}

	if err := r.saveAudit(path); err != nil {
		return Outcome{}, err
	}

	raw, err := r.tool.WriteMetadata(path, map[string]string{WriteTag: d.Target.Format()}, "-overwrite_original")
	if err != nil {
		return Outcome{}, fmt.Errorf("write metadata: %w", err)
	}
	if lines := exiftool.OutputErrors(raw); len(lines) > 0 {
		return Outcome{}, &WriteError{Path: path, Lines: lines}
	}

	out.Status = StatusCorrected
	out.New = d.Target.Format()
	r.logger.Info("changed metadata",
		zap.String("path", path),
		zap.String("old", out.Old),
		zap.String("new", out.New),
		zap.Stringer("filename_date", guessed),
	)
	return out, nil
}

// saveAudit writes the file's current metadata listing to
// <path>_metadata.txt.
func (r *Reconciler) saveAudit(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat for audit: %w", err)
	}
	text, err := r.tool.ReadText(path)
	if err != nil {
		return fmt.Errorf("read metadata for audit: %w", err)
	}

	dump := fmt.Sprintf("metadata for %s\nfile size = %d\n%s", path, info.Size(), text)
	auditPath := path + AuditSuffix
	if err := os.WriteFile(auditPath, []byte(dump), 0644); err != nil {
		return fmt.Errorf("save audit: %w", err)
	}
	r.logger.Debug("saved metadata", zap.String("path", auditPath))
	return nil
}
