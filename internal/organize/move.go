package organize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resolve picks a free destination for src. When dest is taken by a file
// of the same size, src is treated as a duplicate of it and dup is true.
// Otherwise a numeric suffix is added before the extension until the name
// is free. claimed holds destinations planned earlier in the same run that
// may not exist on disk yet.
func Resolve(src, dest string, claimed map[string]bool) (resolved string, dup bool, err error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", false, err
	}

	if destInfo, err := os.Stat(dest); err == nil {
		if srcInfo.Size() == destInfo.Size() {
			return dest, true, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	} else if !claimed[dest] {
		return dest, false, nil
	}

	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if claimed[candidate] {
			continue
		}
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate, false, nil
		} else if err != nil {
			return "", false, err
		}
	}
}

// Move renames src to dest, creating dest's directory. When the rename
// fails, as it does across devices, the file is copied and the source
// removed.
func Move(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return os.Remove(src)
}

// copyFile copies src to dst, keeping src's modification time.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
