package importer

import (
	"fmt"
	"time"

	"github.com/cleared-dev/arrears/internal/importlog"
)

// DefaultMaxWarnings caps the warnings kept in a Summary.
const DefaultMaxWarnings = 1000

// Summary is the outcome of importing one file. It is returned even when
// the import fails.
type Summary struct {
	File   string
	Format string

	StartedAt  time.Time
	FinishedAt time.Time

	RowsRead          int
	RowsImported      int
	BalanceMismatches int
	AccountsCreated   int
	CasesCreated      int
	CasesRefreshed    int

	// Warnings holds file diagnostics first, then row warnings in row
	// order, up to the configured cap.
	Warnings []string
	// DroppedWarnings counts warnings beyond the cap.
	DroppedWarnings int

	// Error is set when the import failed.
	Error string

	maxWarnings int
}

func newSummary(file string, maxWarnings int, now time.Time) *Summary {
	if maxWarnings <= 0 {
		maxWarnings = DefaultMaxWarnings
	}
	return &Summary{File: file, StartedAt: now, maxWarnings: maxWarnings}
}

func (s *Summary) warn(msg string) {
	if len(s.Warnings) >= s.maxWarnings {
		s.DroppedWarnings++
		return
	}
	s.Warnings = append(s.Warnings, msg)
}

func (s *Summary) warnf(format string, args ...any) {
	s.warn(fmt.Sprintf(format, args...))
}

// TotalWarnings counts kept and dropped warnings.
func (s *Summary) TotalWarnings() int {
	return len(s.Warnings) + s.DroppedWarnings
}

// Result is the importlog result of the import.
func (s *Summary) Result() string {
	if s.Error != "" {
		return importlog.ResultFailed
	}
	return importlog.ResultOK
}

// Skipped is the number of rows read but not imported.
func (s *Summary) Skipped() int {
	return s.RowsRead - s.RowsImported
}

// Duration is the wall time of the import.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
