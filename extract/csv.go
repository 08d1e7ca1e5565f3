package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// csvHeader is the export column layout. Order is fixed.
var csvHeader = []string{"Incident ID", "Email", "Full Name", "Source", "Description"}

// BuildCSV renders extracted records as a CSV export for one incident.
// Fields containing a comma, newline or double quote are wrapped in double
// quotes with internal quotes doubled.
func BuildCSV(incidentID string, records []core.EmailRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{incidentID, rec.Email, rec.FullName, rec.SourceTitle, rec.SourceDescription}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename names a CSV download for one incident on a given day.
func ExportFilename(incidentID string, now time.Time) string {
	return fmt.Sprintf("incident_%s_%s_emails.csv", incidentID, now.Format("2006-01-02"))
}
