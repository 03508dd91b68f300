// Package directory loads and serves the faculty reference spreadsheet.
// The directory is read once at startup and never mutated afterwards.
package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrMissingReferenceData is returned when the faculty spreadsheet is
// absent, unreadable, or empty. It is fatal at startup.
var ErrMissingReferenceData = errors.New("faculty directory unavailable")

// Entry is one row of the faculty spreadsheet.
type Entry struct {
	Faculty     string
	Designation string
	Department  string
	Programme   string
}

// Directory holds the immutable faculty reference data.
type Directory struct {
	entries []Entry
	logger  *zap.Logger
}

// Load reads the faculty spreadsheet from path. The first sheet must carry
// a header row with Faculty, Designation, Department and Programme columns.
func Load(path string, logger *zap.Logger) (*Directory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrMissingReferenceData)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: spreadsheet has no data rows", ErrMissingReferenceData)
	}

	// Resolve column positions from the header row.
	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Faculty", "Designation", "Department", "Programme"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMissingReferenceData, required)
		}
	}

	cell := func(row []string, name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	d := &Directory{logger: logger}
	for _, row := range rows[1:] {
		e := Entry{
			Faculty:     cell(row, "Faculty"),
			Designation: cell(row, "Designation"),
			Department:  cell(row, "Department"),
			Programme:   cell(row, "Programme"),
		}
		if e.Faculty == "" {
			continue
		}
		d.entries = append(d.entries, e)
	}

	if len(d.entries) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no faculty rows", ErrMissingReferenceData)
	}

	logger.Info("Faculty directory loaded",
		zap.String("path", path),
		zap.Int("entries", len(d.entries)))

	return d, nil
}

// FromEntries builds a directory from in-memory rows. Used by tests and
// anywhere the spreadsheet has already been parsed.
func FromEntries(entries []Entry, logger *zap.Logger) *Directory {
	return &Directory{entries: entries, logger: logger}
}

// DepartmentsFor returns the distinct departments offering the given
// programme, in spreadsheet order.
func (d *Directory) DepartmentsFor(programme string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range d.entries {
		if e.Programme != programme || e.Department == "" {
			continue
		}
		if !seen[e.Department] {
			seen[e.Department] = true
			out = append(out, e.Department)
		}
	}
	return out
}

// FacultyFor returns the faculty names belonging to the given department,
// in spreadsheet order.
func (d *Directory) FacultyFor(department string) []string {
	var out []string
	for _, e := range d.entries {
		if e.Department == department {
			out = append(out, e.Faculty)
		}
	}
	return out
}

// Find returns the first entry matching the given faculty name.
func (d *Directory) Find(faculty string) (Entry, bool) {
	for _, e := range d.entries {
		if e.Faculty == faculty {
			return e, true
		}
	}
	return Entry{}, false
}
