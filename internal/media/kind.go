// Package media classifies media files and derives capture dates from their
// metadata records.
package media

import (
	"path/filepath"
	"strings"
)

// Kind is the logical media category of a file, derived from its extension.
type Kind string

const (
	KindJPEG    Kind = "image-jpeg"
	KindPNG     Kind = "image-png"
	KindMOV     Kind = "video-mov"
	KindMP4     Kind = "video-mp4"
	KindM4V     Kind = "video-m4v"
	KindUnknown Kind = "unknown"
)

// kindsByExt maps lowercase extensions to their media kind.
var kindsByExt = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".png":  KindPNG,
	".mov":  KindMOV,
	".mp4":  KindMP4,
	".m4v":  KindM4V,
}

// Kinds lists every supported kind, in a stable order.
var Kinds = []Kind{KindJPEG, KindPNG, KindMOV, KindMP4, KindM4V}

// Classify returns the media kind for a filename. Only the extension is
// consulted; file content is never inspected.
func Classify(name string) Kind {
	if k, ok := kindsByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return k
	}
	return KindUnknown
}

