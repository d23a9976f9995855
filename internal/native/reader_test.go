package native

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dater/internal/media"
)

// jpegWithDateTimeOriginal builds a minimal JPEG whose APP1 segment holds a
// little-endian TIFF block with an Exif sub-IFD carrying DateTimeOriginal.
func jpegWithDateTimeOriginal(value string) []byte {
	le := binary.LittleEndian
	date := append([]byte(value), 0)

	var tif bytes.Buffer
	tif.WriteString("II")
	binary.Write(&tif, le, uint16(42))
	binary.Write(&tif, le, uint32(8))

	// IFD0: one entry pointing at the Exif IFD at offset 26.
	binary.Write(&tif, le, uint16(1))
	binary.Write(&tif, le, uint16(0x8769))
	binary.Write(&tif, le, uint16(4))
	binary.Write(&tif, le, uint32(1))
	binary.Write(&tif, le, uint32(26))
	binary.Write(&tif, le, uint32(0))

	// Exif IFD: DateTimeOriginal stored at offset 44.
	binary.Write(&tif, le, uint16(1))
	binary.Write(&tif, le, uint16(0x9003))
	binary.Write(&tif, le, uint16(2))
	binary.Write(&tif, le, uint32(len(date)))
	binary.Write(&tif, le, uint32(44))
	binary.Write(&tif, le, uint32(0))
	tif.Write(date)

	payload := append([]byte("Exif\x00\x00"), tif.Bytes()...)

	var jpg bytes.Buffer
	jpg.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(&jpg, binary.BigEndian, uint16(len(payload)+2))
	jpg.Write(payload)
	jpg.Write([]byte{0xFF, 0xD9})
	return jpg.Bytes()
}

func TestReadTimeMetadataFromEXIF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0001.JPG")
	require.NoError(t, os.WriteFile(path, jpegWithDateTimeOriginal("2019:05:01 10:00:00"), 0644))

	recs, err := NewReader().ReadTimeMetadata(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "2019:05:01 10:00:00", recs[0][media.TagDateTimeOriginal])
	assert.Equal(t, path, recs[0][media.TagSourceFile])

	ts, tag, err := media.CaptureDate(media.KindJPEG, recs[0])
	require.NoError(t, err)
	assert.Equal(t, media.TagDateTimeOriginal, tag)
	assert.Equal(t, media.Timestamp{Year: 2019, Month: 5, Day: 1, Hour: 10}, ts)
}

func TestReadMetadataWalksAllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, jpegWithDateTimeOriginal("2019:05:01 10:00:00"), 0644))

	recs, err := NewReader().ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "2019:05:01 10:00:00", recs[0][media.TagDateTimeOriginal])
	assert.Contains(t, recs[0], media.TagFileModifyDate)
}

func TestReadTimeMetadataWithoutEXIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mov")
	require.NoError(t, os.WriteFile(path, []byte("not really a movie"), 0644))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	recs, err := NewReader().ReadTimeMetadata(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], media.TagDateTimeOriginal)

	ts, tag, err := media.CaptureDate(media.KindMOV, recs[0])
	require.NoError(t, err)
	assert.Equal(t, media.TagFileModifyDate, tag)
	assert.True(t, mtime.Equal(ts.Time()), "got %s", ts)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewReader().ReadTimeMetadata(filepath.Join(t.TempDir(), "gone.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
