package bulk

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Record is one parsed CSV row keyed by column header. Used only as
// substitution input, never persisted.
type Record map[string]string

// ParseRecords reads RFC4180 CSV: the first row is the header, quoted
// fields may hold embedded commas and doubled quotes, blank lines are
// skipped. Rows shorter than the header keep the columns they have.
func ParseRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		empty := true
		for i, name := range header {
			if i >= len(row) {
				break
			}
			rec[name] = row[i]
			if row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
