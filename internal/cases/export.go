package cases

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/arrears/internal/model"
)

// Header is the header row of a case export.
const Header = "case_id;ls;full_name;address;debtor_type;debt_amount;period;premises_type;mgmt_status_text;flags"

// DefaultLimit caps candidate listings.
const DefaultLimit = 500

// MarshalSummary converts a case summary to export cells.
func MarshalSummary(c model.CandidateSummary) []string {
	return []string{
		c.CaseID,
		c.Ls,
		c.FullName,
		c.Address,
		string(c.DebtorType),
		c.DebtAmount.StringFixed(2),
		c.Period(),
		c.PremisesType,
		c.MgmtStatusText,
		strings.Join(c.Flags.Names(), ","),
	}
}

// WriteSummaries writes a semicolon-separated export, header included.
func WriteSummaries(w io.Writer, rows []model.CandidateSummary) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ";")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(MarshalSummary(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
