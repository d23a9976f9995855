package exiftool

import (
	"bufio"
	"sort"
	"strings"
)

// Command is a queued write: option flags, tag assignments and the target
// file. It is sent to the worker as one batch.
type Command struct {
	Flags []string
	Tags  map[string]string
	Path  string
}

// Args renders the command as exiftool arguments: flags first, then one
// -TAG=VALUE per tag in tag-name order, then the path.
func (c Command) Args() []string {
	names := make([]string, 0, len(c.Tags))
	for name := range c.Tags {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, len(c.Flags)+len(names)+1)
	args = append(args, c.Flags...)
	for _, name := range names {
		args = append(args, "-"+name+"="+c.Tags[name])
	}
	return append(args, c.Path)
}

// OutputErrors returns the lines of a raw exiftool response that report a
// failed read or write. exiftool itself does not fail the batch, so callers
// that care must inspect the output.
func OutputErrors(raw string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "Error:") || strings.Contains(line, "weren't updated due to errors") {
			lines = append(lines, line)
		}
	}
	return lines
}
