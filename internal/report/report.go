// Package report writes a per-run xlsx outcome report for operators.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"reelingest/internal/pipeline"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// Write saves one row per processed item plus an outcome tally to path.
func Write(path string, results []pipeline.ItemResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}

	header := []any{"Platform", "Video ID", "URL", "Outcome", "Error", "Duration (ms)"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}

	counts := map[pipeline.Outcome]int{}
	for i, r := range results {
		counts[r.Outcome]++
		row := []any{
			string(r.Item.Platform),
			r.Item.VideoID,
			r.Item.URL,
			string(r.Outcome),
			r.Error,
			r.Duration.Milliseconds(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("report: add summary: %w", err)
	}
	summary := [][]any{
		{"Generated", time.Now().UTC().Format(time.RFC3339)},
		{"Total", len(results)},
		{"Done", counts[pipeline.OutcomeDone]},
		{"Failed", counts[pipeline.OutcomeFailed]},
		{"Skipped", counts[pipeline.OutcomeSkipped]},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("report: write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
