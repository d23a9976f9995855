package media

import (
	"errors"
	"fmt"
)

// Record is the metadata of one file, keyed by group-qualified tag name
// (for example "EXIF:DateTimeOriginal").
type Record map[string]string

// Tag names consulted when deriving a capture date.
const (
	TagDateTimeOriginal  = "EXIF:DateTimeOriginal"
	TagCreateDate        = "EXIF:CreateDate"
	TagQuickTimeCreation = "QuickTime:CreationDate"
	TagQuickTimeCreate   = "QuickTime:CreateDate"
	TagQuickTimeContent  = "QuickTime:ContentCreateDate"
	TagFileModifyDate    = "File:FileModifyDate"
	TagSourceFile        = "SourceFile"
)

var (
	// ErrNoDateTag is returned when none of a kind's candidate tags is present.
	ErrNoDateTag = errors.New("no date tag present")

	// ErrUnsupportedKind is returned for files whose kind has no date rules.
	ErrUnsupportedKind = errors.New("unsupported media kind")
)

// DateFormatError reports a date value that does not follow the exiftool
// date/time layout.
type DateFormatError struct {
	Tag    string
	Value  string
	Reason string
}

func (e *DateFormatError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("invalid date %q in %s: %s", e.Value, e.Tag, e.Reason)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

// dateTags lists, per kind, the tags that carry the capture time in order
// of preference. File:FileModifyDate is always the last resort.
var dateTags = map[Kind][]string{
	KindJPEG: {TagDateTimeOriginal, TagCreateDate, TagFileModifyDate},
	KindPNG:  {TagDateTimeOriginal, TagFileModifyDate},
	KindMOV:  {TagQuickTimeCreation, TagFileModifyDate},
	KindMP4:  {TagQuickTimeCreate, TagFileModifyDate},
	KindM4V:  {TagQuickTimeContent, TagFileModifyDate},
}

// DateTags returns the candidate capture-time tags for kind, most preferred
// first. Unknown kinds have none.
func DateTags(kind Kind) []string {
	return dateTags[kind]
}

// CaptureDate picks the first candidate tag present in rec and parses it.
// The tag that supplied the value is returned alongside the timestamp. A
// present but malformed value is an error; later candidates are not tried.
func CaptureDate(kind Kind, rec Record) (Timestamp, string, error) {
	tags := DateTags(kind)
	if len(tags) == 0 {
		return Timestamp{}, "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	for _, tag := range tags {
		value, ok := rec[tag]
		if !ok {
			continue
		}
		ts, err := ParseDate(value)
		if err != nil {
			var dfe *DateFormatError
			if errors.As(err, &dfe) {
				dfe.Tag = tag
			}
			return Timestamp{}, tag, err
		}
		return ts, tag, nil
	}
	return Timestamp{}, "", ErrNoDateTag
}
