// Package source reads ledger extracts (delimited text or spreadsheets) into
// rows of canonical fields, so the rest of the import does not care about
// the file format.
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/arrears/internal/columns"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one data row of a source.
type Row struct {
	// Line is the 1-based physical line (text) or row (spreadsheet).
	Line   int
	Record columns.Record
	// Malformed rows could not be split into the header's cells.
	Malformed bool
}

// Sheet is a fully read source.
type Sheet struct {
	Format string
	// HeaderLine is the 1-based line of the header row.
	HeaderLine int
	Index      columns.Index
	Rows       []Row
	// Diagnostics are file-level notes shown ahead of row warnings.
	Diagnostics []string
}

// Options tune a read.
type Options struct {
	// ScanRows bounds the header search; zero means columns.DefaultScanRows.
	ScanRows int
}

// Reader converts one input format into a Sheet.
type Reader interface {
	Read(r io.Reader, opts Options) (*Sheet, error)
	Format() string
	Extensions() []string
}

// Registry holds readers keyed by file extension.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader for each of its extensions. Panics on duplicates.
func (r *Registry) Register(rd Reader) {
	for _, ext := range rd.Extensions() {
		key := normalizeExt(ext)
		if _, ok := r.readers[key]; ok {
			panic("duplicate reader extension: " + key)
		}
		r.readers[key] = rd
	}
}

// Get returns the reader for an extension such as ".csv", or nil.
func (r *Registry) Get(ext string) Reader {
	return r.readers[normalizeExt(ext)]
}

// ForPath returns the reader for a file name.
func (r *Registry) ForPath(path string) (Reader, error) {
	rd := r.Get(filepath.Ext(path))
	if rd == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	return rd, nil
}

// Extensions lists the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Delimited{})
	r.Register(&Spreadsheet{})
	return r
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
