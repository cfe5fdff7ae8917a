package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gamelens/internal/api"
	"gamelens/internal/database"
	"gamelens/internal/storage"
	"gamelens/internal/viewer"
)

type TestServer struct {
	Server  *httptest.Server
	App     *api.App
	DB      *database.DB
	Archive *database.ReviewRepository
	Store   *storage.LocalStore
}

func setupTestServer(t *testing.T) *TestServer {
	t.Helper()

	tempDir := t.TempDir()

	store, err := storage.NewLocalStore(filepath.Join(tempDir, "screenshots"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	db, err := database.NewDB(database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(tempDir, "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	archive := database.NewReviewRepository(db)

	app := &api.App{
		Store:         store,
		DB:            db,
		Archive:       archive,
		Viewer:        viewer.NewService(archive),
		MaxUploadSize: 10 * 1024 * 1024,
	}

	server := httptest.NewServer(api.NewRouter(app))
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &TestServer{
		Server:  server,
		App:     app,
		DB:      db,
		Archive: archive,
		Store:   store,
	}
}

func uploadAnalysis(t *testing.T, ts *TestServer, doc string) string {
	t.Helper()

	resp, err := http.Post(ts.Server.URL+"/reviews", "application/json", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Failed to upload analysis: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Upload returned status %d", resp.StatusCode)
	}

	var body struct {
		ReviewID string `json:"review_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	return body.ReviewID
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s: %v", url, err)
		}
	}
	return resp
}

func countReviewLoads(t *testing.T, ts *TestServer) int {
	t.Helper()

	var count int
	if err := ts.DB.Conn().QueryRow("SELECT COUNT(*) FROM review_loads").Scan(&count); err != nil {
		t.Fatalf("Failed to count review loads: %v", err)
	}
	return count
}

func reviewURL(ts *TestServer, id, suffix string) string {
	return fmt.Sprintf("%s/reviews/%s%s", ts.Server.URL, id, suffix)
}

func readerOf(s string) io.Reader {
	return strings.NewReader(s)
}
