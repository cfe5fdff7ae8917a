package analysis

import "fmt"

// Severity grades a discrepancy for the operator.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category identifies one of the four fixed mismatch types between
// adjacent stages of the inference → post-processing → database chain.
type Category string

const (
	CategoryMLVsPostprocessing Category = "ml_vs_postprocessing"
	CategoryPostprocessingVsDB Category = "postprocessing_vs_db"
	CategoryMissingInDB        Category = "missing_in_db"
	CategoryExtraInDB          Category = "extra_in_db"
)

// Evidence carries the raw lists behind a discrepancy so an operator
// can verify the explanation against the stage outputs.
type Evidence struct {
	DetectedGames        []DetectedGame  `json:"detected_games,omitempty"`
	PostProcessedGames   []ProcessedGame `json:"post_processed_games,omitempty"`
	SlidingWindowState   []string        `json:"sliding_window_state,omitempty"`
	DBSessions           []DBSession     `json:"db_sessions,omitempty"`
	MissingGames         []ProcessedGame `json:"missing_games,omitempty"`
	ExtraSessions        []DBSession     `json:"extra_sessions,omitempty"`
	ExpectedCount        int             `json:"expected_count"`
	ActualCount          int             `json:"actual_count"`
	InferenceFailed      bool            `json:"inference_failed,omitempty"`
	PostProcessingFailed bool            `json:"post_processing_failed,omitempty"`
}

// Discrepancy explains one applicable mismatch category for a frame.
type Discrepancy struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Evidence    Evidence `json:"evidence"`
}

// DeriveFlags computes the discrepancy flags for a frame from the same
// count and set comparisons Classify explains, so a flag can never
// disagree with its explanation. Flags carried by the input document
// are ignored in favor of this derivation. Missing or failed stages
// count as zero games.
func DeriveFlags(r *FrameResult) DiscrepancyFlags {
	var f DiscrepancyFlags

	infCount := r.InferenceCount()
	postCount := r.PostProcessedCount()
	if infCount != postCount {
		f.MLVsPostprocessing = true
	} else if ids := Reconcile(r.detectedGames(), r.processedGames(), detectedGameLabel, processedGameID); !ids.Matched {
		f.MLVsPostprocessing = true
	}

	f.PostprocessingVsDB = postCount != len(r.DBSessions)

	rec := Reconcile(r.processedGames(), r.DBSessions, processedGameSessionID, dbGameSessionID)
	f.MissingInDB = len(rec.OnlyInFirst) > 0
	f.ExtraInDB = len(rec.OnlyInSecond) > 0

	return f
}

// Classify produces one Discrepancy per applicable category, in fixed
// category order so output is deterministic. A frame may exhibit
// several categories at once; a clean frame yields an empty list.
// Classify is pure and stateless across calls.
func Classify(r *FrameResult) []Discrepancy {
	out := []Discrepancy{}

	if r.Flags.MLVsPostprocessing {
		out = append(out, classifyMLVsPost(r))
	}
	if r.Flags.PostprocessingVsDB {
		out = append(out, classifyPostVsDB(r))
	}
	if r.Flags.MissingInDB {
		out = append(out, classifyMissingInDB(r))
	}
	if r.Flags.ExtraInDB {
		out = append(out, classifyExtraInDB(r))
	}
	return out
}

func classifyMLVsPost(r *FrameResult) Discrepancy {
	infCount := r.InferenceCount()
	postCount := r.PostProcessedCount()

	ev := Evidence{
		DetectedGames:        r.detectedGames(),
		PostProcessedGames:   r.processedGames(),
		InferenceFailed:      r.Inference.Failed(),
		PostProcessingFailed: r.PostProcessed.Failed(),
	}
	if r.PostProcessed != nil && !r.PostProcessed.Failed() {
		ev.SlidingWindowState = r.PostProcessed.SlidingWindowState
	}

	var severity Severity
	var desc string
	switch {
	case infCount > postCount:
		severity = SeverityInfo
		desc = fmt.Sprintf(
			"Inference detected %d game(s) but post-processing confirmed %d. This is normal sliding-window buildup: a game must be detected repeatedly before the smoothing stage confirms it.",
			infCount, postCount)
	case infCount < postCount:
		severity = SeverityError
		desc = fmt.Sprintf(
			"Post-processing reports %d game(s) but inference only detected %d. The smoothing stage must never confirm more games than were detected; this indicates an upstream logic defect.",
			postCount, infCount)
	default:
		severity = SeverityWarning
		desc = fmt.Sprintf(
			"Inference and post-processing both report %d game(s) but the game identities differ.",
			infCount)
	}

	return Discrepancy{
		Category:    CategoryMLVsPostprocessing,
		Title:       "Inference vs post-processing mismatch",
		Description: desc,
		Severity:    severity,
		Evidence:    ev,
	}
}

func classifyPostVsDB(r *FrameResult) Discrepancy {
	postCount := r.PostProcessedCount()
	return Discrepancy{
		Category: CategoryPostprocessingVsDB,
		Title:    "Post-processing vs database mismatch",
		Description: fmt.Sprintf(
			"Post-processing confirmed %d game(s) but the database holds %d session(s). Every confirmed game must be durably persisted; a count mismatch here is a persistence defect.",
			postCount, len(r.DBSessions)),
		Severity: SeverityError,
		Evidence: Evidence{
			PostProcessedGames:   r.processedGames(),
			DBSessions:           r.DBSessions,
			PostProcessingFailed: r.PostProcessed.Failed(),
		},
	}
}

func classifyMissingInDB(r *FrameResult) Discrepancy {
	rec := Reconcile(r.processedGames(), r.DBSessions, processedGameSessionID, dbGameSessionID)
	return Discrepancy{
		Category: CategoryMissingInDB,
		Title:    "Confirmed games missing from database",
		Description: fmt.Sprintf(
			"%d confirmed game(s) have no matching database session (expected %d, found %d).",
			len(rec.OnlyInFirst), len(r.processedGames()), len(r.DBSessions)),
		Severity: SeverityError,
		Evidence: Evidence{
			MissingGames:  rec.OnlyInFirst,
			ExpectedCount: len(r.processedGames()),
			ActualCount:   len(r.DBSessions),
		},
	}
}

func classifyExtraInDB(r *FrameResult) Discrepancy {
	rec := Reconcile(r.processedGames(), r.DBSessions, processedGameSessionID, dbGameSessionID)
	return Discrepancy{
		Category: CategoryExtraInDB,
		Title:    "Unmatched database sessions",
		Description: fmt.Sprintf(
			"%d database session(s) have no matching confirmed game in this frame. They may belong to sessions opened in an earlier frame that are still running.",
			len(rec.OnlyInSecond)),
		Severity: SeverityWarning,
		Evidence: Evidence{
			ExtraSessions: rec.OnlyInSecond,
		},
	}
}
