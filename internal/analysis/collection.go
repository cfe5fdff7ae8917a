package analysis

// FilterCriteria is a set of independent boolean predicates over a
// frame's discrepancy flags. All set criteria combine with logical AND.
// Created empty, mutated by the caller, never persisted.
type FilterCriteria struct {
	OnlyDiscrepancies bool `json:"only_discrepancies"`
	MLVsPostOnly      bool `json:"ml_vs_post_only"`
	PostVsDBOnly      bool `json:"post_vs_db_only"`
	MissingInDBOnly   bool `json:"missing_in_db_only"`
	ExtraInDBOnly     bool `json:"extra_in_db_only"`
}

// Active reports whether any predicate is set.
func (c FilterCriteria) Active() bool {
	return c.OnlyDiscrepancies || c.MLVsPostOnly || c.PostVsDBOnly || c.MissingInDBOnly || c.ExtraInDBOnly
}

// Matches reports whether a frame satisfies every set predicate.
func (c FilterCriteria) Matches(r *FrameResult) bool {
	if c.OnlyDiscrepancies && !r.HasDiscrepancy() {
		return false
	}
	if c.MLVsPostOnly && !r.Flags.MLVsPostprocessing {
		return false
	}
	if c.PostVsDBOnly && !r.Flags.PostprocessingVsDB {
		return false
	}
	if c.MissingInDBOnly && !r.Flags.MissingInDB {
		return false
	}
	if c.ExtraInDBOnly && !r.Flags.ExtraInDB {
		return false
	}
	return true
}

// Filter applies criteria to a frame sequence, preserving order. When
// the criteria would yield an empty view over a non-empty input, the
// full input is returned instead and fellBack is set so the caller can
// indicate the fallback rather than show a blank screen.
func Filter(results []*FrameResult, c FilterCriteria) (filtered []*FrameResult, fellBack bool) {
	filtered = make([]*FrameResult, 0, len(results))
	for _, r := range results {
		if c.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 && len(results) > 0 {
		return append([]*FrameResult{}, results...), true
	}
	return filtered, false
}

// Collection holds the ordered frame sequence of one session plus the
// active filter criteria and a navigation cursor over the filtered
// view. The view is a non-owning index list into the session's
// sequence; filtering never copies or mutates frames.
type Collection struct {
	session  *Session
	criteria FilterCriteria
	view     []int
	fellBack bool
	pos      int
}

// NewCollection builds a collection over a session with no filter set.
func NewCollection(s *Session) *Collection {
	c := &Collection{session: s}
	c.refilter()
	return c
}

// Session returns the underlying session.
func (c *Collection) Session() *Session { return c.session }

// Criteria returns the active filter criteria.
func (c *Collection) Criteria() FilterCriteria { return c.criteria }

// FellBack reports whether the active criteria matched nothing and the
// view fell back to the full sequence.
func (c *Collection) FellBack() bool { return c.fellBack }

// SetCriteria replaces the filter criteria, re-evaluates the view and
// clamps the cursor: the position is kept if still in bounds, otherwise
// reset to 0. Returns whether the empty-view fallback occurred.
func (c *Collection) SetCriteria(criteria FilterCriteria) (fellBack bool) {
	c.criteria = criteria
	c.refilter()
	return c.fellBack
}

func (c *Collection) refilter() {
	c.view = c.view[:0]
	for i, r := range c.session.Results {
		if c.criteria.Matches(r) {
			c.view = append(c.view, i)
		}
	}
	c.fellBack = false
	if len(c.view) == 0 && len(c.session.Results) > 0 {
		for i := range c.session.Results {
			c.view = append(c.view, i)
		}
		c.fellBack = true
	}
	if c.pos >= len(c.view) {
		c.pos = 0
	}
}

// Results returns the filtered view in session order.
func (c *Collection) Results() []*FrameResult {
	out := make([]*FrameResult, 0, len(c.view))
	for _, i := range c.view {
		out = append(out, c.session.Results[i])
	}
	return out
}

// Len is the length of the filtered view.
func (c *Collection) Len() int { return len(c.view) }

// Position is the cursor position within the filtered view.
func (c *Collection) Position() int { return c.pos }

// Current returns the frame under the cursor, if any.
func (c *Collection) Current() (*FrameResult, bool) {
	if len(c.view) == 0 {
		return nil, false
	}
	return c.session.Results[c.view[c.pos]], true
}

// At returns the frame at a view position, if in bounds.
func (c *Collection) At(position int) (*FrameResult, bool) {
	if position < 0 || position >= len(c.view) {
		return nil, false
	}
	return c.session.Results[c.view[position]], true
}

// Next advances the cursor. It is a no-op at the last position.
func (c *Collection) Next() bool {
	if c.pos >= len(c.view)-1 {
		return false
	}
	c.pos++
	return true
}

// Previous moves the cursor back. It is a no-op at position 0.
func (c *Collection) Previous() bool {
	if c.pos <= 0 {
		return false
	}
	c.pos--
	return true
}

// First jumps to position 0.
func (c *Collection) First() bool {
	if len(c.view) == 0 {
		return false
	}
	c.pos = 0
	return true
}

// Last jumps to the final position.
func (c *Collection) Last() bool {
	if len(c.view) == 0 {
		return false
	}
	c.pos = len(c.view) - 1
	return true
}

// JumpToByIndex moves the cursor to the frame whose external Index
// equals the argument. On failure the cursor is left unchanged and
// false is returned; external indexes are not positions, so the view is
// searched.
func (c *Collection) JumpToByIndex(externalIndex int) bool {
	for pos, i := range c.view {
		if c.session.Results[i].Index == externalIndex {
			c.pos = pos
			return true
		}
	}
	return false
}
