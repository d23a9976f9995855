package organize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"media-dater/internal/walk"
)

var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(.*)$`)

// NormalizedName rewrites "YYYY-MM-DD_rest" as "YYYY-MM-DD-rest". ok is
// false for names without that prefix.
func NormalizedName(name string) (string, bool) {
	m := datePrefix.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}

// RenameDatePrefix renames one file to its normalized name. It is a
// walk.Handler; files without a date prefix are skipped. An existing file
// at the new name is never overwritten.
func RenameDatePrefix(path string) (walk.Result, error) {
	name := filepath.Base(path)
	renamed, ok := NormalizedName(name)
	if !ok {
		return walk.Result{Status: walk.Skipped}, nil
	}

	target := filepath.Join(filepath.Dir(path), renamed)
	if _, err := os.Lstat(target); err == nil {
		return walk.Result{}, fmt.Errorf("rename %s: %s already exists", name, renamed)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return walk.Result{}, err
	}

	if err := os.Rename(path, target); err != nil {
		return walk.Result{}, err
	}
	return walk.Result{Status: walk.Updated, Old: name, New: renamed}, nil
}
