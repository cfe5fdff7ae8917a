package analysis

// Stats summarizes discrepancy counts over a frame sequence. A frame
// can set several flags at once, so the per-category counts may sum to
// more than WithDiscrepancies.
type Stats struct {
	Total              int `json:"total"`
	WithDiscrepancies  int `json:"with_discrepancies"`
	MLVsPostprocessing int `json:"ml_vs_postprocessing"`
	PostprocessingVsDB int `json:"postprocessing_vs_db"`
	MissingInDB        int `json:"missing_in_db"`
	ExtraInDB          int `json:"extra_in_db"`
}

// Summarize recomputes aggregate counts over the full, unfiltered
// sequence. It is recomputed on demand rather than maintained
// incrementally so a replaced collection can never serve stale counts.
func Summarize(results []*FrameResult) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		if r.HasDiscrepancy() {
			s.WithDiscrepancies++
		}
		if r.Flags.MLVsPostprocessing {
			s.MLVsPostprocessing++
		}
		if r.Flags.PostprocessingVsDB {
			s.PostprocessingVsDB++
		}
		if r.Flags.MissingInDB {
			s.MissingInDB++
		}
		if r.Flags.ExtraInDB {
			s.ExtraInDB++
		}
	}
	return s
}
