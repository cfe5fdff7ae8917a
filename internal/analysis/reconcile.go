package analysis

// ReconcileResult is the outcome of matching two entity lists by
// identity. Matched holds iff both difference sets are empty.
type ReconcileResult[A, B any] struct {
	OnlyInFirst  []A
	OnlyInSecond []B
	InBoth       []A
	Matched      bool
}

// Reconcile matches two lists by the string identities extracted from
// their elements. Membership is exact string equality; input order is
// preserved in every output list. It is the single set-theoretic
// operation behind the missing-in-DB and extra-in-DB categories.
func Reconcile[A, B any](first []A, second []B, firstID func(A) string, secondID func(B) string) ReconcileResult[A, B] {
	firstIDs := make(map[string]bool, len(first))
	for _, a := range first {
		firstIDs[firstID(a)] = true
	}
	secondIDs := make(map[string]bool, len(second))
	for _, b := range second {
		secondIDs[secondID(b)] = true
	}

	res := ReconcileResult[A, B]{
		OnlyInFirst:  []A{},
		OnlyInSecond: []B{},
		InBoth:       []A{},
	}
	for _, a := range first {
		if secondIDs[firstID(a)] {
			res.InBoth = append(res.InBoth, a)
		} else {
			res.OnlyInFirst = append(res.OnlyInFirst, a)
		}
	}
	for _, b := range second {
		if !firstIDs[secondID(b)] {
			res.OnlyInSecond = append(res.OnlyInSecond, b)
		}
	}
	res.Matched = len(res.OnlyInFirst) == 0 && len(res.OnlyInSecond) == 0
	return res
}

func processedGameSessionID(g ProcessedGame) string { return g.GameSessionID }

func dbGameSessionID(s DBSession) string { return s.GameSessionID }

func detectedGameLabel(g DetectedGame) string { return g.Label }

func processedGameID(g ProcessedGame) string { return g.GameID }
