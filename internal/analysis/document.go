package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrMissingSessionID = errors.New("analysis document missing session_id")
	ErrMissingResults   = errors.New("analysis document missing results array")
	ErrMissingIndex     = errors.New("frame result missing index")
)

// Wire-format document. Field names are the external contract; all
// fields except session_id and results are optional with defaults.
type document struct {
	SessionID  string           `json:"session_id"`
	Platform   string           `json:"platform"`
	Channel    string           `json:"channel"`
	Date       string           `json:"date"`
	StartTime  string           `json:"start_time"`
	EndTime    string           `json:"end_time"`
	AnalyzedAt string           `json:"analyzed_at"`
	Total      *int             `json:"total"`
	Results    []documentResult `json:"results"`
}

type documentResult struct {
	Index         *int            `json:"index"`
	Screenshot    *Screenshot     `json:"screenshot"`
	MLInference   *Inference      `json:"ml_inference"`
	PostProcessed *PostProcessed  `json:"post_processed"`
	DBSessions    []DBSession     `json:"db_sessions"`
	DBGameCounts  []GameCountRow  `json:"db_game_counts"`
	Flags         json.RawMessage `json:"discrepancy_flags"`
}

// ParseDocument decodes one analysis document into a Session. A missing
// session_id or results array aborts the whole load; every other field
// falls back to its documented default. Discrepancy flags carried by
// the document are discarded and re-derived per frame, so stored flags
// and classifier explanations cannot diverge.
func ParseDocument(r io.Reader) (*Session, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode analysis document: %w", err)
	}

	if doc.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if doc.Results == nil {
		return nil, ErrMissingResults
	}

	session := &Session{
		SessionID:  doc.SessionID,
		Platform:   defaultString(doc.Platform, "unknown"),
		Channel:    defaultString(doc.Channel, "unknown"),
		Date:       defaultString(doc.Date, "unknown"),
		StartTime:  doc.StartTime,
		EndTime:    doc.EndTime,
		AnalyzedAt: doc.AnalyzedAt,
		Total:      len(doc.Results),
		LoadedAt:   time.Now(),
		Results:    make([]*FrameResult, 0, len(doc.Results)),
	}
	if doc.Total != nil {
		session.Total = *doc.Total
	}

	for i, dr := range doc.Results {
		if dr.Index == nil {
			return nil, fmt.Errorf("result at position %d: %w", i, ErrMissingIndex)
		}
		normalizeInference(dr.MLInference)
		normalizePostProcessed(dr.PostProcessed)
		session.Results = append(session.Results, NewFrameResult(*dr.Index, FrameInputs{
			Screenshot:    dr.Screenshot,
			Inference:     dr.MLInference,
			PostProcessed: dr.PostProcessed,
			DBSessions:    dr.DBSessions,
			DBGameCounts:  dr.DBGameCounts,
		}))
	}

	return session, nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func normalizeInference(inf *Inference) {
	if inf == nil {
		return
	}
	if inf.DetectedGames == nil {
		inf.DetectedGames = []DetectedGame{}
	}
}

func normalizePostProcessed(pp *PostProcessed) {
	if pp == nil {
		return
	}
	if pp.Games == nil {
		pp.Games = []ProcessedGame{}
	}
	if pp.SlidingWindowState == nil {
		pp.SlidingWindowState = []string{}
	}
}
