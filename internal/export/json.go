package export

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/sadopc/macrotrend/internal/trend"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Unit       string      `json:"unit"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID        string  `json:"id"`
	Day       string  `json:"day"`
	Value     float64 `json:"value"`
	UpdatedAt string  `json:"updated_at"`
}

// WeightsToJSON writes the weight log to path as indented JSON, newest day first.
func WeightsToJSON(entries []trend.Entry, unit, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Unit:       unit,
		Count:      len(entries),
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b trend.Entry) int { return b.Day.Compare(a.Day) })

	for _, e := range sorted {
		export.Entries = append(export.Entries, jsonEntry{
			ID:        e.ID,
			Day:       e.Day.String(),
			Value:     e.Value,
			UpdatedAt: e.UpdatedAt.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
