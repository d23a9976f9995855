// Package survey records which time tags each media kind carries across a
// library, keeping one example file per distinct tag set.
package survey

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"media-dater/internal/media"
	"media-dater/internal/walk"
)

// FileName is the survey output written to the surveyed root.
const FileName = "_tags.yaml"

// Reader supplies time metadata for files.
type Reader interface {
	ReadTimeMetadata(paths ...string) ([]media.Record, error)
}

// TagSet is one distinct combination of tag names and the first file seen
// carrying it.
type TagSet struct {
	Tags    []string `yaml:"tags"`
	Example string   `yaml:"example"`
}

// Survey accumulates tag sets per kind.
type Survey struct {
	root   string
	reader Reader

	sets map[media.Kind][]TagSet
	seen map[media.Kind]map[string]bool
}

// New returns an empty survey of root.
func New(root string, reader Reader) *Survey {
	return &Survey{
		root:   root,
		reader: reader,
		sets:   make(map[media.Kind][]TagSet),
		seen:   make(map[media.Kind]map[string]bool),
	}
}

// Add records rec's tag names for kind. It returns true when the set had not
// been seen before, in which case example becomes its example file.
func (s *Survey) Add(kind media.Kind, rec media.Record, example string) bool {
	tags := make([]string, 0, len(rec))
	for k := range rec {
		tags = append(tags, k)
	}
	sort.Strings(tags)

	key := strings.Join(tags, "\x00")
	if s.seen[kind] == nil {
		s.seen[kind] = make(map[string]bool)
	}
	if s.seen[kind][key] {
		return false
	}
	s.seen[kind][key] = true
	s.sets[kind] = append(s.sets[kind], TagSet{Tags: tags, Example: example})
	return true
}

// Sets returns the tag sets recorded for kind in the order first seen.
func (s *Survey) Sets(kind media.Kind) []TagSet {
	return s.sets[kind]
}

// Visit reads one file's time metadata and adds it. It is a walk.Handler.
func (s *Survey) Visit(path string) (walk.Result, error) {
	kind := media.Classify(path)
	if kind == media.KindUnknown {
		return walk.Result{Status: walk.Ignored}, nil
	}

	recs, err := s.reader.ReadTimeMetadata(path)
	if err != nil {
		return walk.Result{}, err
	}
	if len(recs) != 1 {
		return walk.Result{}, fmt.Errorf("expected one metadata record for %s, got %d", path, len(recs))
	}

	example := path
	if rel, err := filepath.Rel(s.root, path); err == nil {
		example = filepath.ToSlash(rel)
	}
	if s.Add(kind, recs[0], example) {
		return walk.Result{Status: walk.Updated, New: example}, nil
	}
	return walk.Result{Status: walk.Unchanged}, nil
}

// MarshalYAML renders the survey as a mapping from kind to tag sets. Every
// supported kind appears, with an empty list when nothing was seen.
func (s *Survey) MarshalYAML() (any, error) {
	out := make(map[string][]TagSet, len(media.Kinds))
	for _, kind := range media.Kinds {
		sets := s.sets[kind]
		if sets == nil {
			sets = []TagSet{}
		}
		out[string(kind)] = sets
	}
	return out, nil
}

// Write saves the survey as YAML to FileName in dir and returns the path.
func (s *Survey) Write(dir string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode survey: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode survey: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write survey: %w", err)
	}
	return path, nil
}
