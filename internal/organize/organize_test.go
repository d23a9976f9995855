package organize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dater/internal/media"
	"media-dater/internal/walk"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

type fakeReader struct {
	records map[string]media.Record
	err     error
}

func (f *fakeReader) ReadTimeMetadata(paths ...string) ([]media.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	recs := make([]media.Record, len(paths))
	for i, p := range paths {
		recs[i] = f.records[filepath.Base(p)]
	}
	return recs, nil
}

func TestNewName(t *testing.T) {
	ts := media.Timestamp{Year: 2021, Month: 3, Day: 9, Hour: 7, Minute: 5, Second: 2}
	assert.Equal(t, "2021-03-09-070502.JPG", NewName(ts, ".JPG"))
	assert.Equal(t, "2021-03-09-070502", NewName(ts, ""))
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketDone, BucketFor(media.TagDateTimeOriginal))
	assert.Equal(t, BucketDone, BucketFor(media.TagQuickTimeCreate))
	assert.Equal(t, BucketCheck, BucketFor(media.TagFileModifyDate))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	writeFile(t, src, "12345")

	t.Run("free", func(t *testing.T) {
		dest := filepath.Join(dir, "done", "free.jpg")
		got, dup, err := Resolve(src, dest, nil)
		require.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, dest, got)
	})

	t.Run("same size is a duplicate", func(t *testing.T) {
		dest := filepath.Join(dir, "done", "same.jpg")
		writeFile(t, dest, "abcde")
		got, dup, err := Resolve(src, dest, nil)
		require.NoError(t, err)
		assert.True(t, dup)
		assert.Equal(t, dest, got)
	})

	t.Run("different size gets a suffix", func(t *testing.T) {
		dest := filepath.Join(dir, "done", "taken.jpg")
		writeFile(t, dest, "longer body")
		writeFile(t, filepath.Join(dir, "done", "taken_1.jpg"), "x")
		got, dup, err := Resolve(src, dest, nil)
		require.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, filepath.Join(dir, "done", "taken_2.jpg"), got)
	})

	t.Run("claimed names are avoided", func(t *testing.T) {
		dest := filepath.Join(dir, "done", "planned.jpg")
		claimed := map[string]bool{dest: true}
		got, dup, err := Resolve(src, dest, claimed)
		require.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, filepath.Join(dir, "done", "planned_1.jpg"), got)
	})
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mov")
	writeFile(t, src, "video")
	dest := filepath.Join(dir, "done", "2020-01-01-000000.mov")

	require.NoError(t, Move(src, dest))
	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))
}

func TestCopyFileKeepsModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	writeFile(t, src, "video")
	mtime := time.Date(2015, 7, 4, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dst := filepath.Join(dir, "b.mp4")
	require.NoError(t, copyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Error(t, copyFile(src, dst), "existing destination must not be overwritten")
}

func organizeRoot(t *testing.T) (string, *fakeReader) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "IMG_0001.JPG"), "jpeg")
	writeFile(t, filepath.Join(root, "clip.mov"), "movie")
	writeFile(t, filepath.Join(root, "notes.txt"), "text")
	writeFile(t, filepath.Join(root, "old", "IMG_0002.JPG"), "nested")

	reader := &fakeReader{records: map[string]media.Record{
		"IMG_0001.JPG": {media.TagDateTimeOriginal: "2019:05:01 10:20:30", media.TagFileModifyDate: "2020:01:01 00:00:00+01:00"},
		"clip.mov":     {media.TagFileModifyDate: "2018:12:24 18:00:00+01:00"},
	}}
	return root, reader
}

func TestOrganizeDryRun(t *testing.T) {
	root, reader := organizeRoot(t)
	org := New(root, reader, false, nil)
	w := walk.New(root, walk.WithRecursive(false))

	require.NoError(t, w.Run(org.Organize))

	assert.Equal(t, []Plan{
		{
			Source: "IMG_0001.JPG",
			Dest:   filepath.Join("done", "2019-05-01-102030.JPG"),
			Date:   media.Timestamp{Year: 2019, Month: 5, Day: 1, Hour: 10, Minute: 20, Second: 30},
			Tag:    media.TagDateTimeOriginal,
			Bucket: BucketDone,
		},
		{
			Source: "clip.mov",
			Dest:   filepath.Join("to_check", "2018-12-24-180000.mov"),
			Date:   media.Timestamp{Year: 2018, Month: 12, Day: 24, Hour: 18, HasOffset: true, Offset: 60},
			Tag:    media.TagFileModifyDate,
			Bucket: BucketCheck,
		},
	}, org.Plans())
	assert.Equal(t, []string{"notes.txt"}, w.Ledger().Ignored)
	assert.Len(t, w.Ledger().Updated, 2)

	assert.FileExists(t, filepath.Join(root, "IMG_0001.JPG"))
	assert.NoDirExists(t, filepath.Join(root, "done"))
	assert.Contains(t, org.Summary(), "[DRY RUN] Would organize 2 files")
}

func TestOrganizeExecute(t *testing.T) {
	root, reader := organizeRoot(t)
	writeFile(t, filepath.Join(root, "done", "2019-05-01-102030.JPG"), "other photo")

	org := New(root, reader, true, nil)
	w := walk.New(root, walk.WithRecursive(false))
	require.NoError(t, w.Run(org.Organize))

	assert.NoFileExists(t, filepath.Join(root, "IMG_0001.JPG"))
	assert.FileExists(t, filepath.Join(root, "done", "2019-05-01-102030_1.JPG"))
	assert.FileExists(t, filepath.Join(root, "to_check", "2018-12-24-180000.mov"))
	assert.FileExists(t, filepath.Join(root, "old", "IMG_0002.JPG"))

	report := filepath.Join(root, OrganizedReport("20240101000000"))
	require.NoError(t, org.WriteReport(report))
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "IMG_0001.JPG,"+filepath.Join("done", "2019-05-01-102030_1.JPG")+",2019:05:01 10:20:30,EXIF:DateTimeOriginal,moved\n")
	assert.Contains(t, org.Summary(), "Organized 2 files")
}

func TestOrganizeSkipsDuplicates(t *testing.T) {
	root, reader := organizeRoot(t)
	writeFile(t, filepath.Join(root, "done", "2019-05-01-102030.JPG"), "jpeg")

	org := New(root, reader, true, nil)
	w := walk.New(root, walk.WithRecursive(false))
	require.NoError(t, w.Run(org.Organize))

	assert.FileExists(t, filepath.Join(root, "IMG_0001.JPG"))
	require.Len(t, org.Plans(), 2)
	assert.True(t, org.Plans()[0].Duplicate)
	assert.Contains(t, org.Summary(), "Skipped 1 duplicates")
}

func TestOrganizeFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "png")
	writeFile(t, filepath.Join(root, "b.mp4"), "mp4")

	reader := &fakeReader{records: map[string]media.Record{
		"a.png": {media.TagSourceFile: "a.png"},
		"b.mp4": {media.TagQuickTimeCreate: "garbage"},
	}}
	w := walk.New(root, walk.WithRecursive(false))
	require.NoError(t, w.Run(New(root, reader, true, nil).Organize))

	failed := w.Ledger().Failed
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0].Err, media.ErrNoDateTag)
	var dfe *media.DateFormatError
	assert.ErrorAs(t, failed[1].Err, &dfe)

	broken := errors.New("exiftool gone")
	w = walk.New(root, walk.WithRecursive(false))
	require.NoError(t, w.Run(New(root, &fakeReader{err: broken}, true, nil).Organize))
	assert.Len(t, w.Ledger().Failed, 2)
}

func TestNormalizedName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"2021-12-20_beach.jpg", "2021-12-20-beach.jpg", true},
		{"2021-12-20_a_b.mov", "2021-12-20-a_b.mov", true},
		{"2021-12-20_", "2021-12-20-", true},
		{"2021-12-20-beach.jpg", "", false},
		{"x2021-12-20_beach.jpg", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizedName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestRenameDatePrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "trip", "2021-12-20_beach.jpg"), "a")
	writeFile(t, filepath.Join(root, "2021-12-21_x.png"), "b")
	writeFile(t, filepath.Join(root, "2021-12-21-x.png"), "c")
	writeFile(t, filepath.Join(root, "IMG_0001.JPG"), "d")

	w := walk.New(root)
	require.NoError(t, w.Run(RenameDatePrefix))

	assert.FileExists(t, filepath.Join(root, "trip", "2021-12-20-beach.jpg"))
	assert.FileExists(t, filepath.Join(root, "2021-12-21_x.png"))
	assert.FileExists(t, filepath.Join(root, "IMG_0001.JPG"))

	ledger := w.Ledger()
	assert.Equal(t, []walk.Change{{
		Path: filepath.Join("trip", "2021-12-20_beach.jpg"),
		Old:  "2021-12-20_beach.jpg",
		New:  "2021-12-20-beach.jpg",
	}}, ledger.Updated)
	require.Len(t, ledger.Failed, 1)
	assert.Equal(t, "2021-12-21_x.png", ledger.Failed[0].Name)
	assert.Empty(t, ledger.Ignored)
}
