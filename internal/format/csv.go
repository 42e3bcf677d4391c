package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders the header row followed by the data rows. No title or decoration is written.
func CSV(headers []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		out := make([]string, len(headers))
		for i := range headers {
			out[i] = cell(row, i)
		}
		if err := w.Write(out); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.String(), nil
}
