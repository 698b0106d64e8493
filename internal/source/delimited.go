package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/arrears/internal/columns"
)

// Delimited reads semicolon- or tab-separated text.
type Delimited struct{}

func (d *Delimited) Format() string { return "csv" }

func (d *Delimited) Extensions() []string { return []string{".csv", ".tsv", ".txt"} }

type rawLine struct {
	line  int
	cells []string
	bad   bool
}

// Read decodes the text, detects the delimiter from the first line and locates
// the header within the scan window. Lines before the header are ignored.
func (d *Delimited) Read(r io.Reader, opts Options) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = DetectDelimiter(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var lines []rawLine
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			lines = append(lines, rawLine{line: pe.Line, bad: true})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parsing text: %w", err)
		}
		line, _ := cr.FieldPos(0)
		lines = append(lines, rawLine{line: line, cells: rec})
	}

	cells := make([][]string, len(lines))
	for i, l := range lines {
		cells[i] = l.cells
	}
	headerAt, ix, err := columns.FindHeader(cells, opts.ScanRows)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Format:     d.Format(),
		HeaderLine: lines[headerAt].line,
		Index:      ix,
	}
	for _, l := range lines[headerAt+1:] {
		row := Row{Line: l.line}
		if l.bad || len(l.cells) != ix.Width() {
			row.Malformed = true
		} else {
			row.Record = ix.Record(l.cells)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// DetectDelimiter picks tab when the first line has more tabs than
// semicolons, and semicolon otherwise.
func DetectDelimiter(text []byte) rune {
	first := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	if bytes.Count(first, []byte{'\t'}) > bytes.Count(first, []byte{';'}) {
		return '\t'
	}
	return ';'
}

// decodeText honours a UTF-8 or UTF-16 byte order mark. Without one, text
// that is not valid UTF-8 is taken as Windows-1251.
func decodeText(data []byte) ([]byte, error) {
	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.Windows1251.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	return out, nil
}
