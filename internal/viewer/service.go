package viewer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"gamelens/internal/analysis"
	"gamelens/internal/database"
)

var ErrReviewNotFound = errors.New("review not found")

const updateBuffer = 16

// Update notifies the presentation layer that a review changed. The
// core never touches a rendering surface itself; views subscribe and
// decide what to redraw (including re-requesting the screenshot for
// the newly selected frame).
type Update struct {
	Type     string `json:"type"` // "loaded", "selection_changed", "filter_changed"
	ReviewID string `json:"review_id"`
	Position int    `json:"position"`
	Index    int    `json:"index"`
}

// Review is one open diagnostic session: the loaded analysis session
// plus filter and navigation state. All mutation goes through its
// methods; the embedded collection is never handed out.
type Review struct {
	ID      string
	Session *analysis.Session

	mu         sync.Mutex
	collection *analysis.Collection
	updates    chan Update
	closed     bool
}

// Service holds open reviews keyed by id. Reviews are explicit
// instances handed to callers, so separate sessions (or parallel
// tests) never collide through shared state.
type Service struct {
	archive *database.ReviewRepository

	mu      sync.RWMutex
	reviews map[string]*Review
}

// NewService builds a review holder. The archive repository is
// optional; with nil, loads are simply not recorded.
func NewService(archive *database.ReviewRepository) *Service {
	return &Service{
		archive: archive,
		reviews: make(map[string]*Review),
	}
}

// Load parses one analysis document and installs it as a new review.
// Nothing is installed on a parse failure. When replaceID names an
// existing review, that review is closed and replaced wholesale.
func (s *Service) Load(r io.Reader, replaceID string) (*Review, error) {
	session, err := analysis.ParseDocument(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis document: %w", err)
	}

	review := &Review{
		ID:         uuid.New().String(),
		Session:    session,
		collection: analysis.NewCollection(session),
		updates:    make(chan Update, updateBuffer),
	}

	if s.archive != nil {
		if err := s.archive.Insert(database.NewReviewRecord(review.ID, session)); err != nil {
			// The archive is history, not state; a failed write must
			// not block the review.
			log.Printf("Failed to archive review %s: %v", review.ID, err)
		}
	}

	s.mu.Lock()
	if replaceID != "" {
		if old, ok := s.reviews[replaceID]; ok {
			old.shutdown()
			delete(s.reviews, replaceID)
		}
	}
	s.reviews[review.ID] = review
	s.mu.Unlock()

	review.notify(Update{Type: "loaded", ReviewID: review.ID})
	return review, nil
}

// Get returns an open review by id.
func (s *Service) Get(id string) (*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// Close discards an open review.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[id]
	if !ok {
		return ErrReviewNotFound
	}
	review.shutdown()
	delete(s.reviews, id)
	return nil
}

// Updates is the review's notification stream.
func (rv *Review) Updates() <-chan Update {
	return rv.updates
}

// SetFilter replaces the filter criteria. Returns whether the
// empty-view fallback occurred so the caller can indicate it.
func (rv *Review) SetFilter(c analysis.FilterCriteria) (fellBack bool) {
	rv.mu.Lock()
	fellBack = rv.collection.SetCriteria(c)
	rv.mu.Unlock()
	rv.notifyCurrent("filter_changed")
	return fellBack
}

// Criteria returns the active filter criteria.
func (rv *Review) Criteria() analysis.FilterCriteria {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.Criteria()
}

// FellBack reports whether the active view is the fallback full
// sequence.
func (rv *Review) FellBack() bool {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.FellBack()
}

// Filtered returns the active view in session order.
func (rv *Review) Filtered() []*analysis.FrameResult {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.Results()
}

// Len is the active view length.
func (rv *Review) Len() int {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.Len()
}

// Position is the cursor position within the active view.
func (rv *Review) Position() int {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.Position()
}

// Current returns the frame under the cursor.
func (rv *Review) Current() (*analysis.FrameResult, bool) {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.Current()
}

// At returns the frame at a view position.
func (rv *Review) At(position int) (*analysis.FrameResult, bool) {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	return rv.collection.At(position)
}

// Navigate runs one cursor command: next, previous, first, last. The
// moved result reports whether the cursor actually changed; boundary
// commands are no-ops.
func (rv *Review) Navigate(action string) (moved bool, err error) {
	rv.mu.Lock()
	switch action {
	case "next":
		moved = rv.collection.Next()
	case "previous":
		moved = rv.collection.Previous()
	case "first":
		moved = rv.collection.First()
	case "last":
		moved = rv.collection.Last()
	default:
		rv.mu.Unlock()
		return false, fmt.Errorf("unknown navigation action: %s", action)
	}
	rv.mu.Unlock()

	if moved {
		rv.notifyCurrent("selection_changed")
	}
	return moved, nil
}

// JumpToByIndex moves the cursor to the frame with the given external
// index. A miss leaves the cursor unchanged and returns false.
func (rv *Review) JumpToByIndex(externalIndex int) bool {
	rv.mu.Lock()
	ok := rv.collection.JumpToByIndex(externalIndex)
	rv.mu.Unlock()
	if ok {
		rv.notifyCurrent("selection_changed")
	}
	return ok
}

// Stats recomputes the aggregate counts over the full, unfiltered
// session.
func (rv *Review) Stats() analysis.Stats {
	return analysis.Summarize(rv.Session.Results)
}

func (rv *Review) notifyCurrent(updateType string) {
	rv.mu.Lock()
	u := Update{Type: updateType, ReviewID: rv.ID, Position: rv.collection.Position()}
	if cur, ok := rv.collection.Current(); ok {
		u.Index = cur.Index
	}
	rv.mu.Unlock()
	rv.notify(u)
}

// shutdown closes the update stream. Callers may still hold the
// review after it is discarded from the service; the closed flag keeps
// their late notifications from sending on the closed channel.
func (rv *Review) shutdown() {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	if rv.closed {
		return
	}
	rv.closed = true
	close(rv.updates)
}

// notify never blocks; a slow or absent subscriber drops updates, and
// a discarded review drops them entirely.
func (rv *Review) notify(u Update) {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	if rv.closed {
		return
	}
	select {
	case rv.updates <- u:
	default:
	}
}
