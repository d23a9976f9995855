package walk

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Change is one file the handler modified.
type Change struct {
	Path string
	Old  string
	New  string
}

// Failure is one file or directory that could not be processed.
type Failure struct {
	Dir  string
	Name string
	Err  error
}

// Path returns the failing entry's path relative to the root.
func (f Failure) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

// Ledger accumulates per-file results for one walk. All paths are relative
// to the walked root.
type Ledger struct {
	Updated   []Change
	Failed    []Failure
	Ignored   []string
	Unchanged int
}

// Reports names the CSV files a ledger is written to. An empty name skips
// that report.
type Reports struct {
	Updated string
	Failed  string
	Ignored string

	UpdatedHeader []string
	// UpdatedRow renders one change. It defaults to path, old, new.
	UpdatedRow    func(Change) []string
}

// ReportStamp formats the timestamp embedded in report names.
func ReportStamp(now time.Time) string {
	return now.Format("20060102150405")
}

// UpdateReports returns the report names of a metadata update run.
func UpdateReports(now time.Time) Reports {
	stamp := ReportStamp(now)
	return Reports{
		Updated:       stamp + "_updated_metadata.csv",
		Failed:        stamp + "_failures_update.csv",
		Ignored:       stamp + "_ignored_update.csv",
		UpdatedHeader: []string{"filepath", "old_metadata", "new_metadata"},
	}
}

// RenameReports returns the report names of a date-prefix rename run. The
// handler reports the new base name as a change's New value.
func RenameReports(now time.Time) Reports {
	stamp := ReportStamp(now)
	return Reports{
		Updated:       "_renamed" + stamp + ".csv",
		Failed:        "_failures" + stamp + ".csv",
		UpdatedHeader: []string{"old_filepath", "new_filepath"},
		UpdatedRow: func(c Change) []string {
			return []string{c.Path, filepath.Join(filepath.Dir(c.Path), c.New)}
		},
	}
}

// WriteReports writes the ledger's CSVs into dir and returns their paths.
func (l *Ledger) WriteReports(dir string, r Reports) ([]string, error) {
	var written []string

	if r.Updated != "" {
		rows := make([][]string, 0, len(l.Updated)+1)
		row := r.UpdatedRow
		if row == nil {
			row = func(c Change) []string { return []string{c.Path, c.Old, c.New} }
		}
		rows = append(rows, r.UpdatedHeader)
		for _, c := range l.Updated {
			rows = append(rows, row(c))
		}
		path, err := writeCSV(dir, r.Updated, rows)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if r.Failed != "" {
		rows := make([][]string, 0, len(l.Failed)+1)
		rows = append(rows, []string{"dirpath", "filename", "error"})
		for _, f := range l.Failed {
			rows = append(rows, []string{f.Dir, f.Name, f.Err.Error()})
		}
		path, err := writeCSV(dir, r.Failed, rows)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if r.Ignored != "" {
		rows := make([][]string, 0, len(l.Ignored)+1)
		rows = append(rows, []string{"filepath"})
		for _, p := range l.Ignored {
			rows = append(rows, []string{p})
		}
		path, err := writeCSV(dir, r.Ignored, rows)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

func writeCSV(dir, name string, rows [][]string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write report %s: %w", name, err)
	}
	return path, f.Close()
}
