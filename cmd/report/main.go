package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"gamelens/internal/analysis"
)

func main() {
	var (
		file     = flag.String("file", "", "Analysis document to report on")
		csvPath  = flag.String("csv", "", "Write the per-frame export to this CSV file")
		onlyDisc = flag.Bool("only-discrepancies", false, "Limit the frame table to flagged frames")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("Please provide an analysis document with -file")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open analysis document:", err)
	}
	defer f.Close()

	session, err := analysis.ParseDocument(f)
	if err != nil {
		log.Fatal("Failed to parse analysis document:", err)
	}

	fmt.Printf("Session:  %s\n", session.SessionID)
	fmt.Printf("Platform: %s / %s\n", session.Platform, session.Channel)
	fmt.Printf("Date:     %s\n", session.Date)
	fmt.Printf("Frames:   %d\n\n", len(session.Results))

	stats := analysis.Summarize(session.Results)
	fmt.Println(renderTable(
		[]string{"Metric", "Count"},
		[][]string{
			{"Total frames", strconv.Itoa(stats.Total)},
			{"With discrepancies", strconv.Itoa(stats.WithDiscrepancies)},
			{"Inference vs post-processing", strconv.Itoa(stats.MLVsPostprocessing)},
			{"Post-processing vs database", strconv.Itoa(stats.PostprocessingVsDB)},
			{"Missing in database", strconv.Itoa(stats.MissingInDB)},
			{"Extra in database", strconv.Itoa(stats.ExtraInDB)},
		},
		[]columnAlignment{alignLeft, alignRight},
	))

	frames, fellBack := analysis.Filter(session.Results, analysis.FilterCriteria{OnlyDiscrepancies: *onlyDisc})
	if fellBack {
		fmt.Println("\nNo frames matched the filter; showing all frames.")
	}

	rows := make([][]string, 0, len(frames))
	for _, r := range frames {
		rows = append(rows, analysis.ExportRow(r))
	}
	fmt.Println()
	fmt.Println(renderTable(analysis.ExportHeader, rows, []columnAlignment{
		alignRight, alignLeft, alignRight, alignRight, alignRight,
		alignLeft, alignLeft, alignLeft, alignLeft,
	}))

	for _, r := range frames {
		for _, d := range analysis.Classify(r) {
			fmt.Printf("\nframe %d [%s] %s\n  %s\n", r.Index, d.Severity, d.Title, d.Description)
		}
	}

	if *csvPath != "" {
		out, err := os.Create(*csvPath)
		if err != nil {
			log.Fatal("Failed to create CSV file:", err)
		}
		defer out.Close()

		if err := analysis.WriteCSV(out, session.Results); err != nil {
			log.Fatal("Failed to write CSV:", err)
		}
		fmt.Printf("\nWrote %s\n", *csvPath)
	}
}
