package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/models"
)

// stubRenderer satisfies batch.Renderer without a browser.
type stubRenderer struct {
	fail map[string]bool
}

func (s *stubRenderer) Render(_ context.Context, req *models.RenderRequest) (*models.RenderedPage, error) {
	if s.fail[req.URL] {
		return nil, models.NewRenderError(models.ErrCodeNavigation, "unreachable", nil)
	}
	return &models.RenderedPage{
		RequestedURL: req.URL,
		FinalURL:     req.URL,
		HTML:         "<html></html>",
		CapturedAt:   time.Now().UTC(),
	}, nil
}

func newBatchRouter(rd *stubRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/batch/scrape", PostBatch(rd, config.BatchConfig{DefaultConcurrency: 1, MaxLinks: 500}))
	r.GET("/batch/:id", GetBatch())
	return r
}

// pollUntilDone polls the status endpoint until the job leaves "processing".
func pollUntilDone(t *testing.T, r *gin.Engine, id string) models.BatchStatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/batch/"+id, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status poll returned %d: %s", w.Code, w.Body.String())
		}
		var status models.BatchStatusResponse
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatalf("bad status body: %v", err)
		}
		if status.Status != "processing" {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("batch never left processing")
	return models.BatchStatusResponse{}
}

func TestBatchEndpoint_SubmitAndPoll(t *testing.T) {
	rd := &stubRenderer{fail: map[string]bool{"https://x.test/docs/b": true}}
	r := newBatchRouter(rd)

	body := `{"links": ["/docs/a", "/docs/b"], "base_url": "https://x.test"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/batch/scrape", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", w.Code, w.Body.String())
	}
	var submitted models.BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("bad submit body: %v", err)
	}
	if submitted.Total != 2 || submitted.ID == "" {
		t.Fatalf("unexpected submit response: %+v", submitted)
	}

	final := pollUntilDone(t, r, submitted.ID)

	if final.Status != "partial" {
		t.Errorf("one of two links failed, expected partial, got %q", final.Status)
	}
	if final.Completed != 2 {
		t.Errorf("expected 2 completed, got %d", final.Completed)
	}
	if len(final.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(final.Results))
	}
	if final.Results[0].URL != "https://x.test/docs/a" || final.Results[0].Status != models.StatusOK {
		t.Errorf("unexpected first result: %+v", final.Results[0])
	}
	if final.Results[1].Status != models.StatusError {
		t.Errorf("unexpected second result: %+v", final.Results[1])
	}
}

func TestBatchEndpoint_EmptyLinkSetCompletes(t *testing.T) {
	r := newBatchRouter(&stubRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/batch/scrape", bytes.NewBufferString(`{"links": []}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("empty batch rejected: %d %s", w.Code, w.Body.String())
	}
	var submitted models.BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &submitted); err != nil {
		t.Fatal(err)
	}

	final := pollUntilDone(t, r, submitted.ID)
	if final.Status != "completed" || final.Total != 0 {
		t.Errorf("empty batch should complete with no results: %+v", final)
	}
}

func TestBatchEndpoint_UnknownJob(t *testing.T) {
	r := newBatchRouter(&stubRenderer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/batch/batch-doesnotexist", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// Concurrent polls against a job being updated must observe consistent
// snapshots; run with the race detector to verify the store's locking.
func TestJobStore_ConcurrentUpdateAndStatus(t *testing.T) {
	store := &jobStore{jobs: make(map[string]*models.BatchJob)}
	id := store.create(100)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= 100; i++ {
			store.update(id, func(j *models.BatchJob) { j.Completed = i })
		}
		store.update(id, func(j *models.BatchJob) {
			j.Status = "completed"
			j.Results = make([]models.ScrapeResult, 100)
		})
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			snapshot, ok := store.status(id)
			if !ok {
				t.Error("job disappeared mid-run")
				return
			}
			if snapshot.Completed < 0 || snapshot.Completed > 100 {
				t.Errorf("inconsistent snapshot: %+v", snapshot)
				return
			}
		}
	}()

	wg.Wait()

	final, ok := store.status(id)
	if !ok || final.Status != "completed" || final.Completed != 100 {
		t.Errorf("unexpected terminal state: %+v", final)
	}
}

func TestPoolHealth(t *testing.T) {
	tests := []struct {
		active, max int
		want        string
	}{
		{0, 8, "healthy"},
		{6, 8, "healthy"},
		{7, 8, "degraded"},
		{8, 8, "degraded"},
		{0, 0, "healthy"},
	}

	for _, tt := range tests {
		got := poolHealth(models.PoolStats{MaxPages: tt.max, ActivePages: tt.active})
		if got != tt.want {
			t.Errorf("poolHealth(%d/%d) = %q, want %q", tt.active, tt.max, got, tt.want)
		}
	}
}
