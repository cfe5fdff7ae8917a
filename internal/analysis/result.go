package analysis

import "time"

// Screenshot describes the captured image for a frame. A nil Screenshot
// on a FrameResult means no screenshot was taken for that instant.
type Screenshot struct {
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`
	Timestamp  string `json:"timestamp"`
	CacheKey   string `json:"cache_key"`
}

// DetectedGame is one candidate identification from the inference stage.
type DetectedGame struct {
	Label       string    `json:"label"`
	Confidence  float64   `json:"confidence"`
	BoundingBox []float64 `json:"bounding_box,omitempty"`
}

// Inference is the raw ML detection output for a frame. A non-empty
// Error marks the stage as failed, which is distinct from detecting
// zero games.
type Inference struct {
	DetectedGames  []DetectedGame `json:"detected_games"`
	GameCount      int            `json:"game_count"`
	LatencyMs      float64        `json:"latency_ms"`
	IsUniformFrame bool           `json:"is_uniform_frame"`
	Error          string         `json:"error,omitempty"`
}

// Failed reports whether the inference stage errored for this frame.
func (i *Inference) Failed() bool {
	return i != nil && i.Error != ""
}

// ProcessedGame is one game confirmed by the post-processing stage.
type ProcessedGame struct {
	GameID        string `json:"game_id"`
	GameSessionID string `json:"game_session_id"`
}

// PostProcessed is the output of the sliding-window smoothing stage.
type PostProcessed struct {
	Games              []ProcessedGame `json:"games"`
	GameCount          int             `json:"game_count"`
	EventType          string          `json:"event_type"`
	ThresholdApplied   bool            `json:"threshold_applied"`
	SlidingWindowState []string        `json:"sliding_window_state"`
	Error              string          `json:"error,omitempty"`
}

// Failed reports whether the post-processing stage errored for this frame.
func (p *PostProcessed) Failed() bool {
	return p != nil && p.Error != ""
}

// DBSession is one persisted game session row read back for a frame.
type DBSession struct {
	GameSessionID      string  `json:"game_session_id"`
	GameIdentifier     string  `json:"game_identifier"`
	GameName           string  `json:"game_name"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	TrueAirtimeSeconds float64 `json:"true_airtime_seconds"`
	MatchesScreenshot  bool    `json:"matches_screenshot"`
}

// GameCountRow is auxiliary DB data shown alongside a frame. It plays
// no part in classification.
type GameCountRow struct {
	Timestamp      string `json:"timestamp"`
	GameSessionID  string `json:"game_session_id"`
	GameIdentifier string `json:"game_identifier"`
}

// DiscrepancyFlags marks which of the four mismatch categories apply to
// a frame. Flags are derived once at construction from the frame's own
// stage outputs and never mutated independently.
type DiscrepancyFlags struct {
	MLVsPostprocessing bool `json:"ml_vs_postprocessing"`
	PostprocessingVsDB bool `json:"postprocessing_vs_db"`
	MissingInDB        bool `json:"missing_in_db"`
	ExtraInDB          bool `json:"extra_in_db"`
}

// Any reports whether at least one category flag is set.
func (f DiscrepancyFlags) Any() bool {
	return f.MLVsPostprocessing || f.PostprocessingVsDB || f.MissingInDB || f.ExtraInDB
}

// FrameResult is one analyzed screenshot instant: the three stage
// outputs plus the derived discrepancy flags. Index is the stable
// external identifier; it is unique within a session but not
// necessarily contiguous.
type FrameResult struct {
	Index         int              `json:"index"`
	Screenshot    *Screenshot      `json:"screenshot,omitempty"`
	Inference     *Inference       `json:"ml_inference,omitempty"`
	PostProcessed *PostProcessed   `json:"post_processed,omitempty"`
	DBSessions    []DBSession      `json:"db_sessions"`
	DBGameCounts  []GameCountRow   `json:"db_game_counts"`
	Flags         DiscrepancyFlags `json:"discrepancy_flags"`
}

// FrameInputs carries the per-stage raw inputs for one frame. Nil
// Inference/PostProcessed mean the stage produced nothing, which is a
// legitimate state and distinct from a stage that ran and found zero
// games.
type FrameInputs struct {
	Screenshot    *Screenshot
	Inference     *Inference
	PostProcessed *PostProcessed
	DBSessions    []DBSession
	DBGameCounts  []GameCountRow
}

// NewFrameResult assembles a FrameResult and derives its discrepancy
// flags. Nil list fields are normalized to empty slices so downstream
// serialization is stable.
func NewFrameResult(index int, in FrameInputs) *FrameResult {
	r := &FrameResult{
		Index:         index,
		Screenshot:    in.Screenshot,
		Inference:     in.Inference,
		PostProcessed: in.PostProcessed,
		DBSessions:    in.DBSessions,
		DBGameCounts:  in.DBGameCounts,
	}
	if r.DBSessions == nil {
		r.DBSessions = []DBSession{}
	}
	if r.DBGameCounts == nil {
		r.DBGameCounts = []GameCountRow{}
	}
	r.Flags = DeriveFlags(r)
	return r
}

// HasDiscrepancy reports whether any mismatch category applies.
func (r *FrameResult) HasDiscrepancy() bool {
	return r.Flags.Any()
}

// InferenceCount is the inference game count used for comparisons.
// A missing or failed stage counts as zero.
func (r *FrameResult) InferenceCount() int {
	if r.Inference == nil || r.Inference.Failed() {
		return 0
	}
	return r.Inference.GameCount
}

// PostProcessedCount is the post-processing game count used for
// comparisons. A missing or failed stage counts as zero.
func (r *FrameResult) PostProcessedCount() int {
	if r.PostProcessed == nil || r.PostProcessed.Failed() {
		return 0
	}
	return r.PostProcessed.GameCount
}

func (r *FrameResult) detectedGames() []DetectedGame {
	if r.Inference == nil || r.Inference.Failed() {
		return nil
	}
	return r.Inference.DetectedGames
}

func (r *FrameResult) processedGames() []ProcessedGame {
	if r.PostProcessed == nil || r.PostProcessed.Failed() {
		return nil
	}
	return r.PostProcessed.Games
}

// Session is one loaded analysis document: metadata plus the ordered
// frame sequence. It is immutable after load; a reload replaces the
// whole Session.
type Session struct {
	SessionID  string         `json:"session_id"`
	Platform   string         `json:"platform"`
	Channel    string         `json:"channel"`
	Date       string         `json:"date"`
	StartTime  string         `json:"start_time"`
	EndTime    string         `json:"end_time"`
	AnalyzedAt string         `json:"analyzed_at"`
	Total      int            `json:"total"`
	LoadedAt   time.Time      `json:"loaded_at"`
	Results    []*FrameResult `json:"results"`
}
