package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gamelens/internal/analysis"
	"gamelens/internal/database"
	"gamelens/internal/storage"
	"gamelens/internal/viewer"
)

// App carries the wired collaborators for the HTTP surface.
type App struct {
	Store         storage.Store
	DB            *database.DB
	Archive       *database.ReviewRepository
	Viewer        *viewer.Service
	MaxUploadSize int64
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>POST an analysis document to /reviews to start a review.</p>
</body>
</html>`))

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	data := struct{ Title string }{Title: "gamelens"}
	if err := indexTemplate.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

// UploadReviewHandler accepts one analysis JSON document, either as a
// multipart "analysis" file or as a raw JSON body, and installs it as a
// new review. A "replace" query parameter names a review to swap out.
func (app *App) UploadReviewHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	var body io.Reader = r.Body
	if err := r.ParseMultipartForm(app.MaxUploadSize); err == nil {
		file, _, ferr := r.FormFile("analysis")
		if ferr != nil {
			respondError(w, http.StatusBadRequest, "Missing analysis file")
			return
		}
		defer file.Close()
		body = file
	}

	review, err := app.Viewer.Load(body, r.URL.Query().Get("replace"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to load analysis: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"review_id": review.ID,
		"session":   sessionMeta(review.Session),
		"stats":     review.Stats(),
	})
}

// ReviewSummaryHandler returns session metadata, current filter state
// and aggregate statistics for one open review.
func (app *App) ReviewSummaryHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}

	respondJSON(w, map[string]any{
		"review_id":       review.ID,
		"session":         sessionMeta(review.Session),
		"filter":          review.Criteria(),
		"filter_fallback": review.FellBack(),
		"view_length":     review.Len(),
		"position":        review.Position(),
		"stats":           review.Stats(),
	})
}

// FrameHandler returns one frame of the active filtered view together
// with its classified discrepancies. The position segment is either a
// view position or "current".
func (app *App) FrameHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}

	var frame *analysis.FrameResult
	var found bool
	position := review.Position()
	if seg := chi.URLParam(r, "position"); seg == "current" {
		frame, found = review.Current()
	} else {
		pos, err := strconv.Atoi(seg)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid position")
			return
		}
		frame, found = review.At(pos)
		position = pos
	}
	if !found {
		respondError(w, http.StatusNotFound, "No frame at this position")
		return
	}

	respondJSON(w, map[string]any{
		"position":      position,
		"view_length":   review.Len(),
		"frame":         frame,
		"discrepancies": analysis.Classify(frame),
	})
}

// SetFilterHandler replaces the filter criteria for a review.
func (app *App) SetFilterHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}

	var criteria analysis.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid filter criteria")
		return
	}

	fellBack := review.SetFilter(criteria)
	respondJSON(w, map[string]any{
		"filter":          criteria,
		"filter_fallback": fellBack,
		"view_length":     review.Len(),
		"position":        review.Position(),
	})
}

// NavigateHandler runs one cursor command: next, previous, first,
// last, or jump (with an "index" query parameter holding the external
// frame index). A jump miss is a 404, not a cursor change.
func (app *App) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}

	action := chi.URLParam(r, "action")
	var moved bool
	if action == "jump" {
		index, err := strconv.Atoi(r.URL.Query().Get("index"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Missing or invalid index parameter")
			return
		}
		if !review.JumpToByIndex(index) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("No frame with index %d in the current view", index))
			return
		}
		moved = true
	} else {
		var err error
		moved, err = review.Navigate(action)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	current, _ := review.Current()
	resp := map[string]any{
		"moved":       moved,
		"position":    review.Position(),
		"view_length": review.Len(),
	}
	if current != nil {
		resp["index"] = current.Index
	}
	respondJSON(w, resp)
}

// StatsHandler recomputes the aggregate statistics for a review.
func (app *App) StatsHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}
	respondJSON(w, review.Stats())
}

// ExportHandler streams the review as CSV, one row per frame of the
// full unfiltered session.
func (app *App) ExportHandler(w http.ResponseWriter, r *http.Request) {
	review, ok := app.review(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", review.Session.SessionID+".csv"))

	if err := analysis.WriteCSV(w, review.Session.Results); err != nil {
		log.Printf("Failed to export review %s: %v", review.ID, err)
	}
}

// RecentReviewsHandler lists past loads from the archive.
func (app *App) RecentReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if app.Archive == nil {
		respondJSON(w, []database.ReviewRecord{})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := app.Archive.ListRecent(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error loading review history")
		return
	}
	if records == nil {
		records = []database.ReviewRecord{}
	}
	respondJSON(w, records)
}

// placeholderPNG is a 1x1 transparent PNG served when a screenshot
// object is missing, so the frame stays displayable.
var placeholderPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// ScreenshotHandler serves a screenshot object by storage key. Missing
// objects get a placeholder image rather than an error; the frame view
// must never fail because an image is unavailable.
func (app *App) ScreenshotHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	file, err := app.Store.Open(key)
	if err != nil {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Gamelens-Placeholder", "1")
		w.Write(placeholderPNG)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, key, time.Time{}, file)
}

func (app *App) review(w http.ResponseWriter, r *http.Request) (*viewer.Review, bool) {
	review, err := app.Viewer.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, viewer.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, "Review not found")
		} else {
			respondError(w, http.StatusInternalServerError, "Error loading review")
		}
		return nil, false
	}
	return review, true
}

func sessionMeta(s *analysis.Session) map[string]any {
	return map[string]any{
		"session_id":  s.SessionID,
		"platform":    s.Platform,
		"channel":     s.Channel,
		"date":        s.Date,
		"start_time":  s.StartTime,
		"end_time":    s.EndTime,
		"analyzed_at": s.AnalyzedAt,
		"total":       s.Total,
		"loaded_at":   s.LoadedAt,
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
