package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/arrears/internal/columns"
	"github.com/cleared-dev/arrears/internal/locale"
)

// Spreadsheet reads the first worksheet of an OOXML workbook.
type Spreadsheet struct{}

func (s *Spreadsheet) Format() string { return "xlsx" }

func (s *Spreadsheet) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// dateFields hold numeric serials in spreadsheets and are rewritten as
// dd.MM.yyyy text before leaving the reader.
var dateFields = []columns.Field{columns.Period, columns.LsCloseDate}

// Read loads raw cell values (unformatted), so date cells arrive as serial
// numbers and amounts keep their full precision.
func (s *Spreadsheet) Read(r io.Reader, opts Options) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}

	headerAt, ix, err := columns.FindHeader(rows, opts.ScanRows)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Format:     s.Format(),
		HeaderLine: headerAt + 1,
		Index:      ix,
	}
	for i := headerAt + 1; i < len(rows); i++ {
		cells := rows[i]
		if blank(cells) {
			continue
		}
		rec := ix.Record(cells)
		for _, fld := range dateFields {
			if d, ok := locale.Serial(rec.Get(fld)); ok {
				rec.Set(fld, d.Russian())
			}
		}
		sheet.Rows = append(sheet.Rows, Row{Line: i + 1, Record: rec})
	}

	sheet.Diagnostics = append(sheet.Diagnostics, fmt.Sprintf(
		"Инфо: строка заголовков обнаружена на строке %d листа «%s». Строк данных: %d.",
		sheet.HeaderLine, name, len(sheet.Rows)))
	return sheet, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
