// Package walk drives a sequential directory traversal, hands each regular
// file to a handler and keeps ledgers of what happened to every file.
package walk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// DefaultSkip lists system and camera folders that never hold user media.
var DefaultSkip = []string{
	"**/.stfolder",       // Syncthing
	"**/.fseventsd",      // macOS filesystem events
	"**/.Trashes",        // macOS trash
	"**/.Spotlight-V100", // macOS Spotlight index
	"**/PRIVATE",         // Camera system folder
	"**/AVF_INFO",        // Sony AVCHD info
	"**/THMBNL",          // Sony thumbnails
}

// Status classifies a handler's result.
type Status int

const (
	// Unchanged files were examined and needed nothing.
	Unchanged Status = iota
	// Updated files were changed; Old and New describe the change.
	Updated
	// Ignored files are not media the handler deals with.
	Ignored
	// Skipped files are outside the handler's concern and are not recorded.
	Skipped
)

// Result is what a handler reports for one file.
type Result struct {
	Status Status
	Old    string
	New    string
}

// Handler processes one file. path is the root joined with the file's
// relative path. A returned error marks the file failed; the walk goes on.
type Handler func(path string) (Result, error)

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the logger used for per-file events.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithSkip sets doublestar patterns, matched against slash-separated paths
// relative to the root. Matching directories are pruned; matching files are
// not visited.
func WithSkip(patterns []string) Option {
	return func(w *Walker) {
		w.skip = patterns
	}
}

// WithRecursive controls whether subdirectories are visited. It defaults to
// true.
func WithRecursive(recursive bool) Option {
	return func(w *Walker) {
		w.recursive = recursive
	}
}

// WithMetrics counts every result in m.
func WithMetrics(m *Metrics) Option {
	return func(w *Walker) {
		w.metrics = m
	}
}

// Walker visits the files under a root one at a time.
type Walker struct {
	root      string
	skip      []string
	recursive bool
	logger    *zap.Logger
	metrics   *Metrics
	ledger    Ledger
}

// New returns a Walker for root.
func New(root string, opts ...Option) *Walker {
	w := &Walker{
		root:      root,
		recursive: true,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ledger returns the results recorded so far.
func (w *Walker) Ledger() *Ledger {
	return &w.ledger
}

// Root returns the directory being walked.
func (w *Walker) Root() string {
	return w.root
}

// Run walks the tree in lexical order and calls h for every regular file.
// Only a failure to read the root itself is returned; every other problem
// is recorded against the file or directory it concerns.
func (w *Walker) Run(h Handler) error {
	for _, p := range w.skip {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid skip pattern %q", p)
		}
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", w.root)
	}

	w.logger.Info("walking", zap.String("root", w.root))

	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}

		if err != nil {
			if path == w.root {
				return err
			}
			w.fail(rel, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == w.root {
				return nil
			}
			if !w.recursive || w.skipped(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || w.skipped(rel) {
			return nil
		}

		w.handle(path, rel, h)
		return nil
	})
}

func (w *Walker) skipped(rel string) bool {
	slashed := filepath.ToSlash(rel)
	for _, p := range w.skip {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
	}
	return false
}

func (w *Walker) handle(path, rel string, h Handler) {
	res, err := h(path)
	if err != nil {
		w.fail(rel, err)
		return
	}

	switch res.Status {
	case Updated:
		w.ledger.Updated = append(w.ledger.Updated, Change{Path: rel, Old: res.Old, New: res.New})
	case Ignored:
		w.ledger.Ignored = append(w.ledger.Ignored, rel)
	case Unchanged:
		w.ledger.Unchanged++
	}
	if w.metrics != nil {
		w.metrics.observe(res.Status)
	}
}

func (w *Walker) fail(rel string, err error) {
	w.logger.Warn("failed", zap.String("path", rel), zap.Error(err))
	dir, name := filepath.Split(rel)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" {
		dir = "."
	}
	w.ledger.Failed = append(w.ledger.Failed, Failure{Dir: dir, Name: name, Err: err})
	if w.metrics != nil {
		w.metrics.Failed.Inc()
	}
}
