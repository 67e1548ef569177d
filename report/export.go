package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dataview/mailscrub/types"
)

// WriteCSV exports outcomes as delimited text with the columns
// email, domain, status, reason. Status values are the exact strings
// "Valid", "Invalid" and "Error".
func WriteCSV(w io.Writer, outcomes []types.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email", "domain", "status", "reason"}); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, o := range outcomes {
		if err := cw.Write([]string{o.Email, o.Domain, o.Status, o.Reason}); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
