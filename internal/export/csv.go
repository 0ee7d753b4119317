package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/macrotrend/internal/trend"
)

// WeightsToCSV writes the weight log to path, one row per day in the order given.
func WeightsToCSV(entries []trend.Entry, unit, path string) error {
	return writeCSV(path, []string{"ID", "Day", "Value", "Unit", "Updated"}, entries, func(e trend.Entry) []string {
		return []string{
			e.ID,
			e.Day.String(),
			formatValue(e.Value),
			unit,
			e.UpdatedAt.Local().Format(time.RFC3339),
		}
	})
}

// TotalsToCSV writes daily totals of one nutrition metric to path.
func TotalsToCSV(totals []trend.Entry, metric, unit, path string) error {
	return writeCSV(path, []string{"Day", "Metric", "Total", "Unit"}, totals, func(e trend.Entry) []string {
		return []string{e.Day.String(), metric, formatValue(e.Value), unit}
	})
}

func writeCSV(path string, header []string, entries []trend.Entry, row func(trend.Entry) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write(row(e)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
