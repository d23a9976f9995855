// Package native reads metadata in-process with goexif, for commands that
// only need to read and can run without an exiftool installation.
//
// Records use the same group-qualified names exiftool produces, so the date
// rules in package media apply unchanged. Only EXIF blocks goexif can
// locate are decoded (JPEG and TIFF-based files); QuickTime atoms are not,
// so videos resolve to File:FileModifyDate.
package native

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"media-dater/internal/media"
)

// fileDateLayout is how exiftool prints file-system times.
const fileDateLayout = "2006:01:02 15:04:05-07:00"

// timeFields maps goexif field names to the tag names exiftool reports for
// them. DateTimeDigitized is exiftool's CreateDate and DateTime its
// ModifyDate.
var timeFields = map[exif.FieldName]string{
	exif.DateTimeOriginal:  "EXIF:DateTimeOriginal",
	exif.DateTimeDigitized: "EXIF:CreateDate",
	exif.DateTime:          "EXIF:ModifyDate",
}

// Reader decodes EXIF with goexif. It holds no resources.
type Reader struct{}

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTimeMetadata returns the time-related tags of each file.
func (r *Reader) ReadTimeMetadata(paths ...string) ([]media.Record, error) {
	return r.read(paths, false)
}

// ReadMetadata returns every EXIF tag goexif can decode, plus the file
// modification time.
func (r *Reader) ReadMetadata(paths ...string) ([]media.Record, error) {
	return r.read(paths, true)
}

// Close is a no-op; it lets Reader stand in for an exiftool client.
func (r *Reader) Close() error {
	return nil
}

func (r *Reader) read(paths []string, all bool) ([]media.Record, error) {
	recs := make([]media.Record, 0, len(paths))
	for _, path := range paths {
		rec, err := readFile(path, all)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func readFile(path string, all bool) (media.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	rec := media.Record{
		media.TagSourceFile:     path,
		media.TagFileModifyDate: info.ModTime().Format(fileDateLayout),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF block is normal for PNGs and videos.
		return rec, nil
	}

	if all {
		if err := x.Walk(&recordWalker{rec: rec}); err != nil {
			return nil, fmt.Errorf("walk exif of %s: %w", path, err)
		}
		return rec, nil
	}

	for field, tag := range timeFields {
		t, err := x.Get(field)
		if err != nil {
			var missing exif.TagNotPresentError
			if errors.As(err, &missing) {
				continue
			}
			return nil, fmt.Errorf("read %s of %s: %w", field, path, err)
		}
		if v, err := t.StringVal(); err == nil {
			rec[tag] = trimValue(v)
		}
	}
	return rec, nil
}

// recordWalker copies every decoded field into a record.
type recordWalker struct {
	rec media.Record
}

func (w *recordWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	key := "EXIF:" + string(name)
	if alias, ok := timeFields[name]; ok {
		key = alias
	}
	if tag.Format() == tiff.StringVal {
		v, err := tag.StringVal()
		if err != nil {
			return nil
		}
		w.rec[key] = trimValue(v)
		return nil
	}
	w.rec[key] = tag.String()
	return nil
}

// trimValue drops the NUL padding some cameras leave in ASCII values.
func trimValue(v string) string {
	return strings.TrimRight(v, "\x00 ")
}
