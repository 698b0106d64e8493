package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReportWarnings is how many warnings a saved report lists.
const ReportWarnings = 200

// WriteReport renders s as the plain-text import report.
func WriteReport(w io.Writer, s *Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Отчёт об импорте: %s\n", s.StartedAt.Format("02.01.2006 15:04:05"))
	fmt.Fprintf(&b, "Файл: %s\n", s.File)
	fmt.Fprintf(&b, "Результат: %s\n", s.Result())
	if s.Error != "" {
		fmt.Fprintf(&b, "Ошибка: %s\n", s.Error)
	}
	fmt.Fprintf(&b, "Прочитано строк: %d\n", s.RowsRead)
	fmt.Fprintf(&b, "Импортировано: %d\n", s.RowsImported)
	fmt.Fprintf(&b, "Несхождения баланса: %d\n", s.BalanceMismatches)
	fmt.Fprintf(&b, "Новых ЛС: %d\n", s.AccountsCreated)
	fmt.Fprintf(&b, "Дел создано: %d, обновлено: %d\n", s.CasesCreated, s.CasesRefreshed)

	if len(s.Warnings) > 0 {
		fmt.Fprintf(&b, "\nПредупреждения (первые %d):\n", ReportWarnings)
		for i, msg := range s.Warnings {
			if i == ReportWarnings {
				break
			}
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		if rest := s.TotalWarnings() - min(len(s.Warnings), ReportWarnings); rest > 0 {
			fmt.Fprintf(&b, "... и ещё %d\n", rest)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ReportName is the file name of the report for s.
func ReportName(s *Summary) string {
	return fmt.Sprintf("import-%s-%s.txt", s.StartedAt.Format("20060102-150405"), s.File)
}

// SaveReport writes the report of s into dir and returns its path.
func SaveReport(dir string, s *Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}
	path := filepath.Join(dir, ReportName(s))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, s); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, f.Close()
}
