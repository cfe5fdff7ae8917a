package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportHeader is the column order of the flat tabular export.
var ExportHeader = []string{
	"index",
	"screenshot_timestamp",
	"inference_game_count",
	"post_processed_game_count",
	"db_session_count",
	"ml_vs_postprocessing",
	"postprocessing_vs_db",
	"missing_in_db",
	"extra_in_db",
}

// ExportRow flattens one frame into the export column order. Flags are
// rendered as literal YES/NO.
func ExportRow(r *FrameResult) []string {
	timestamp := ""
	if r.Screenshot != nil {
		timestamp = r.Screenshot.Timestamp
	}
	return []string{
		strconv.Itoa(r.Index),
		timestamp,
		strconv.Itoa(r.InferenceCount()),
		strconv.Itoa(r.PostProcessedCount()),
		strconv.Itoa(len(r.DBSessions)),
		yesNo(r.Flags.MLVsPostprocessing),
		yesNo(r.Flags.PostprocessingVsDB),
		yesNo(r.Flags.MissingInDB),
		yesNo(r.Flags.ExtraInDB),
	}
}

// ExportRows flattens a frame sequence, order preserved.
func ExportRows(results []*FrameResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, ExportRow(r))
	}
	return rows
}

// WriteCSV writes the header plus one row per frame.
func WriteCSV(w io.Writer, results []*FrameResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(ExportRow(r)); err != nil {
			return fmt.Errorf("failed to write csv row for frame %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
