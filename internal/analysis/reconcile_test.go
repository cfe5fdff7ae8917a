package analysis

import "testing"

func TestReconcile_Basic(t *testing.T) {
	post := []ProcessedGame{
		{GameID: "fortnite", GameSessionID: "gs-1"},
		{GameID: "minecraft", GameSessionID: "gs-2"},
		{GameID: "valorant", GameSessionID: "gs-3"},
	}
	db := []DBSession{
		{GameSessionID: "gs-2", GameIdentifier: "minecraft"},
		{GameSessionID: "gs-4", GameIdentifier: "roblox"},
	}

	res := Reconcile(post, db, processedGameSessionID, dbGameSessionID)

	if len(res.OnlyInFirst) != 2 {
		t.Fatalf("Expected 2 entries only in first, got %d", len(res.OnlyInFirst))
	}
	if res.OnlyInFirst[0].GameSessionID != "gs-1" || res.OnlyInFirst[1].GameSessionID != "gs-3" {
		t.Errorf("OnlyInFirst order not preserved: %+v", res.OnlyInFirst)
	}
	if len(res.OnlyInSecond) != 1 || res.OnlyInSecond[0].GameSessionID != "gs-4" {
		t.Errorf("Expected gs-4 only in second, got %+v", res.OnlyInSecond)
	}
	if len(res.InBoth) != 1 || res.InBoth[0].GameSessionID != "gs-2" {
		t.Errorf("Expected gs-2 in both, got %+v", res.InBoth)
	}
	if res.Matched {
		t.Error("Expected Matched=false with non-empty differences")
	}
}

func TestReconcile_Matched(t *testing.T) {
	post := []ProcessedGame{{GameID: "fortnite", GameSessionID: "gs-1"}}
	db := []DBSession{{GameSessionID: "gs-1", GameIdentifier: "fortnite"}}

	res := Reconcile(post, db, processedGameSessionID, dbGameSessionID)
	if !res.Matched {
		t.Error("Expected Matched=true for identical identity sets")
	}
	if len(res.OnlyInFirst) != 0 || len(res.OnlyInSecond) != 0 {
		t.Errorf("Expected empty differences, got %+v / %+v", res.OnlyInFirst, res.OnlyInSecond)
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	res := Reconcile(nil, []DBSession{}, processedGameSessionID, dbGameSessionID)
	if !res.Matched {
		t.Error("Expected two empty lists to match")
	}
	if res.OnlyInFirst == nil || res.OnlyInSecond == nil || res.InBoth == nil {
		t.Error("Expected non-nil output slices")
	}
}

func TestReconcile_Symmetry(t *testing.T) {
	post := []ProcessedGame{
		{GameID: "fortnite", GameSessionID: "gs-1"},
		{GameID: "minecraft", GameSessionID: "gs-2"},
	}
	db := []DBSession{
		{GameSessionID: "gs-2"},
		{GameSessionID: "gs-9"},
	}

	forward := Reconcile(post, db, processedGameSessionID, dbGameSessionID)
	backward := Reconcile(db, post, dbGameSessionID, processedGameSessionID)

	if len(forward.OnlyInFirst) != len(backward.OnlyInSecond) {
		t.Errorf("Swapping inputs must swap difference sets: %d vs %d",
			len(forward.OnlyInFirst), len(backward.OnlyInSecond))
	}
	if len(forward.OnlyInSecond) != len(backward.OnlyInFirst) {
		t.Errorf("Swapping inputs must swap difference sets: %d vs %d",
			len(forward.OnlyInSecond), len(backward.OnlyInFirst))
	}
	if len(forward.InBoth) != len(backward.InBoth) {
		t.Errorf("InBoth size must survive swapping: %d vs %d",
			len(forward.InBoth), len(backward.InBoth))
	}
	if forward.Matched != backward.Matched {
		t.Error("Matched must survive swapping the inputs")
	}
}
