package viewer

import (
	"errors"
	"strings"
	"testing"

	"gamelens/internal/analysis"
)

const testDocument = `{
	"session_id": "sess-1",
	"platform": "twitch",
	"results": [
		{
			"index": 1,
			"ml_inference": {"detected_games": [{"label": "fortnite", "confidence": 0.97}, {"label": "minecraft", "confidence": 0.9}], "game_count": 2},
			"post_processed": {"games": [{"game_id": "fortnite", "game_session_id": "gs-1"}], "game_count": 1},
			"db_sessions": [{"game_session_id": "gs-1", "game_identifier": "fortnite"}]
		},
		{
			"index": 2,
			"ml_inference": {"detected_games": [{"label": "fortnite", "confidence": 0.98}], "game_count": 1},
			"post_processed": {"games": [{"game_id": "fortnite", "game_session_id": "gs-1"}], "game_count": 1},
			"db_sessions": [{"game_session_id": "gs-1", "game_identifier": "fortnite"}]
		}
	]
}`

func loadTestReview(t *testing.T, svc *Service) *Review {
	t.Helper()
	review, err := svc.Load(strings.NewReader(testDocument), "")
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	return review
}

func TestService_Load(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)

	if review.Session.SessionID != "sess-1" {
		t.Errorf("Session not installed: %+v", review.Session)
	}
	if review.Len() != 2 {
		t.Errorf("Expected 2 frames in the view, got %d", review.Len())
	}

	got, err := svc.Get(review.ID)
	if err != nil || got != review {
		t.Errorf("Expected to retrieve the installed review, got %v / %v", got, err)
	}
}

func TestService_LoadBadDocumentInstallsNothing(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Load(strings.NewReader(`{"results": []}`), "")
	if !errors.Is(err, analysis.ErrMissingSessionID) {
		t.Fatalf("Expected ErrMissingSessionID, got %v", err)
	}

	svc.mu.RLock()
	n := len(svc.reviews)
	svc.mu.RUnlock()
	if n != 0 {
		t.Errorf("A failed load must not install a partial review, found %d", n)
	}
}

func TestService_LoadReplaces(t *testing.T) {
	svc := NewService(nil)
	first := loadTestReview(t, svc)

	second, err := svc.Load(strings.NewReader(testDocument), first.ID)
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	if _, err := svc.Get(first.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Error("Replaced review must be gone")
	}
	if _, err := svc.Get(second.ID); err != nil {
		t.Errorf("Replacement review must be retrievable: %v", err)
	}
}

func TestReview_NavigationEmitsUpdates(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)
	drain(review)

	moved, err := review.Navigate("next")
	if err != nil || !moved {
		t.Fatalf("Expected next to move, got moved=%v err=%v", moved, err)
	}

	select {
	case u := <-review.Updates():
		if u.Type != "selection_changed" || u.Position != 1 || u.Index != 2 {
			t.Errorf("Unexpected update %+v", u)
		}
	default:
		t.Fatal("Expected a selection_changed update")
	}

	// Boundary no-op must not emit.
	if moved, _ := review.Navigate("next"); moved {
		t.Fatal("Next at the last position must be a no-op")
	}
	select {
	case u := <-review.Updates():
		t.Errorf("No update expected for a boundary no-op, got %+v", u)
	default:
	}
}

func TestReview_NavigateUnknownAction(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)

	if _, err := review.Navigate("sideways"); err == nil {
		t.Error("Expected error for unknown action")
	}
}

func TestReview_FilterFallbackReported(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)

	// No frame sets extra_in_db; the view must fall back.
	fellBack := review.SetFilter(analysis.FilterCriteria{ExtraInDBOnly: true})
	if !fellBack || !review.FellBack() {
		t.Error("Expected fallback to be reported")
	}
	if review.Len() != 2 {
		t.Errorf("Fallback view must be the full sequence, got %d", review.Len())
	}
}

func TestReview_JumpToByIndex(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)

	if !review.JumpToByIndex(2) {
		t.Fatal("Expected jump to succeed")
	}
	if review.JumpToByIndex(99) {
		t.Error("Jump to unknown index must fail")
	}
	if cur, _ := review.Current(); cur.Index != 2 {
		t.Errorf("Failed jump must leave the cursor unchanged, now at %d", cur.Index)
	}
}

func TestReview_MutationAfterCloseIsSafe(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)
	drain(review)

	if err := svc.Close(review.ID); err != nil {
		t.Fatalf("Failed to close review: %v", err)
	}

	// A handler resolved before Close may still mutate the review; the
	// closed update stream must drop notifications, not panic.
	if moved, err := review.Navigate("next"); err != nil || !moved {
		t.Fatalf("Expected next to move on a closed review, got moved=%v err=%v", moved, err)
	}
	review.SetFilter(analysis.FilterCriteria{OnlyDiscrepancies: true})

	if _, ok := <-review.Updates(); ok {
		t.Error("Closed update stream must not deliver further updates")
	}
}

func TestReview_MutationAfterReplaceIsSafe(t *testing.T) {
	svc := NewService(nil)
	first := loadTestReview(t, svc)

	if _, err := svc.Load(strings.NewReader(testDocument), first.ID); err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	first.SetFilter(analysis.FilterCriteria{OnlyDiscrepancies: true})
	if !first.JumpToByIndex(2) {
		t.Error("Expected jump on the replaced review to still work")
	}
}

func TestReview_Stats(t *testing.T) {
	svc := NewService(nil)
	review := loadTestReview(t, svc)

	stats := review.Stats()
	if stats.Total != 2 || stats.WithDiscrepancies != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func drain(rv *Review) {
	for {
		select {
		case <-rv.updates:
		default:
			return
		}
	}
}
