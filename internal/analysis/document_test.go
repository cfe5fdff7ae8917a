package analysis

import (
	"errors"
	"strings"
	"testing"
)

const sampleDocument = `{
	"session_id": "sess-abc",
	"platform": "twitch",
	"channel": "somechannel",
	"date": "2026-08-01",
	"total": 3,
	"results": [
		{
			"index": 1,
			"screenshot": {"filename": "f1.png", "storage_key": "shots/f1.png", "timestamp": "2026-08-01T12:00:00Z"},
			"ml_inference": {
				"detected_games": [{"label": "fortnite", "confidence": 0.97}, {"label": "minecraft", "confidence": 0.91}],
				"game_count": 2
			},
			"post_processed": {
				"games": [{"game_id": "fortnite", "game_session_id": "gs-1"}],
				"game_count": 1,
				"event_type": "confirmed",
				"sliding_window_state": ["fortnite", "fortnite", "minecraft"]
			},
			"db_sessions": [{"game_session_id": "gs-1", "game_identifier": "fortnite"}]
		},
		{
			"index": 2,
			"ml_inference": {
				"detected_games": [{"label": "fortnite", "confidence": 0.96}, {"label": "minecraft", "confidence": 0.93}],
				"game_count": 2
			},
			"post_processed": {
				"games": [
					{"game_id": "fortnite", "game_session_id": "gs-1"},
					{"game_id": "minecraft", "game_session_id": "gs-42"}
				],
				"game_count": 2
			},
			"db_sessions": [{"game_session_id": "gs-1", "game_identifier": "fortnite"}]
		},
		{
			"index": 3,
			"ml_inference": {
				"detected_games": [{"label": "fortnite", "confidence": 0.98}],
				"game_count": 1
			},
			"post_processed": {
				"games": [{"game_id": "fortnite", "game_session_id": "gs-1"}],
				"game_count": 1
			},
			"db_sessions": [{"game_session_id": "gs-1", "game_identifier": "fortnite"}]
		}
	]
}`

func TestParseDocument(t *testing.T) {
	s, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}

	if s.SessionID != "sess-abc" || s.Platform != "twitch" || s.Total != 3 {
		t.Errorf("Session metadata wrong: %+v", s)
	}
	if len(s.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(s.Results))
	}
	if s.Results[0].Screenshot == nil || s.Results[0].Screenshot.StorageKey != "shots/f1.png" {
		t.Errorf("Screenshot not carried through: %+v", s.Results[0].Screenshot)
	}
	if s.Results[1].Screenshot != nil {
		t.Error("Absent screenshot must stay absent")
	}
}

// The end-to-end session from the sample: frame 1 shows sliding-window
// buildup, frame 2 has a confirmed game missing from the DB, frame 3 is
// clean. Filtering on discrepancies must yield exactly frames 1 and 2.
func TestParseDocument_EndToEndClassification(t *testing.T) {
	s, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}

	d1 := Classify(s.Results[0])
	if len(d1) != 1 || d1[0].Category != CategoryMLVsPostprocessing || d1[0].Severity != SeverityInfo {
		t.Errorf("Frame 1: expected a single info ml_vs_postprocessing discrepancy, got %+v", d1)
	}

	d2 := Classify(s.Results[1])
	missing := findDiscrepancy(t, d2, CategoryMissingInDB)
	if len(missing.Evidence.MissingGames) != 1 || missing.Evidence.MissingGames[0].GameSessionID != "gs-42" {
		t.Errorf("Frame 2: expected missing set [gs-42], got %+v", missing.Evidence.MissingGames)
	}

	if s.Results[2].HasDiscrepancy() {
		t.Errorf("Frame 3: expected clean frame, got flags %+v", s.Results[2].Flags)
	}
	if got := Classify(s.Results[2]); len(got) != 0 {
		t.Errorf("Frame 3: expected empty discrepancy list, got %+v", got)
	}

	filtered, fellBack := Filter(s.Results, FilterCriteria{OnlyDiscrepancies: true})
	if fellBack {
		t.Error("Unexpected fallback")
	}
	if len(filtered) != 2 || filtered[0].Index != 1 || filtered[1].Index != 2 {
		t.Errorf("Expected frames 1 and 2 in original order, got %+v", indexesOf(filtered))
	}
}

func TestParseDocument_Defaults(t *testing.T) {
	s, err := ParseDocument(strings.NewReader(`{"session_id": "s", "results": []}`))
	if err != nil {
		t.Fatalf("Failed to parse minimal document: %v", err)
	}
	if s.Platform != "unknown" || s.Channel != "unknown" || s.Date != "unknown" {
		t.Errorf("Expected unknown defaults, got %q/%q/%q", s.Platform, s.Channel, s.Date)
	}
	if s.Total != 0 {
		t.Errorf("Expected total to default to len(results), got %d", s.Total)
	}
}

func TestParseDocument_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"no session_id", `{"results": []}`, ErrMissingSessionID},
		{"no results", `{"session_id": "s"}`, ErrMissingResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(strings.NewReader(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseDocument_MissingIndexIsFatal(t *testing.T) {
	body := `{"session_id": "s", "results": [{"index": 1}, {"screenshot": null}]}`
	_, err := ParseDocument(strings.NewReader(body))
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("Expected ErrMissingIndex, got %v", err)
	}
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument(strings.NewReader("{not json"))
	if err == nil {
		t.Fatal("Expected decode error")
	}
}

func TestParseDocument_AbsentVsEmptyInference(t *testing.T) {
	body := `{"session_id": "s", "results": [
		{"index": 1},
		{"index": 2, "ml_inference": {"detected_games": [], "game_count": 0}}
	]}`
	s, err := ParseDocument(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if s.Results[0].Inference != nil {
		t.Error("Absent inference block must stay absent")
	}
	if s.Results[1].Inference == nil {
		t.Error("Present-but-empty inference block must be kept")
	}
}

func TestParseDocument_IgnoresStoredFlags(t *testing.T) {
	// The document claims a mismatch for a frame that is actually clean;
	// derivation wins.
	body := `{"session_id": "s", "results": [
		{
			"index": 1,
			"discrepancy_flags": {"ml_vs_postprocessing": true, "missing_in_db": true}
		}
	]}`
	s, err := ParseDocument(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if s.Results[0].HasDiscrepancy() {
		t.Errorf("Stored flags must be re-derived, got %+v", s.Results[0].Flags)
	}
}
