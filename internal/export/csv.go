package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"orderdesk/internal/models"
)

// WriteCSV writes the header row followed by one row per order
func WriteCSV(w io.Writer, orders []*models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write(record(o)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", o.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
