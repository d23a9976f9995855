package exiftool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"media-dater/internal/media"
)

// decodeRecords parses exiftool -j output: a JSON array with one object per
// file. Every value is flattened to a string.
func decodeRecords(out string) ([]media.Record, error) {
	dec := json.NewDecoder(strings.NewReader(out))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	recs := make([]media.Record, 0, len(raw))
	for _, obj := range raw {
		rec := make(media.Record, len(obj))
		for tag, v := range obj {
			rec[tag] = stringify(v)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
