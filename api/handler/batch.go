package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/batch"
	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/models"
)

// jobStore tracks batch jobs. The background batch goroutine writes status
// and progress while pollers read them, so every field access goes through
// the lock; Results is only ever assigned once, at terminal state, and never
// mutated afterwards, so handing the slice to a snapshot is safe.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.BatchJob
}

func newJobStore(maxAge time.Duration) *jobStore {
	s := &jobStore{jobs: make(map[string]*models.BatchJob)}
	go s.sweepLoop(maxAge)
	return s
}

// jobs holds all in-flight and completed batch jobs. Jobs expire an hour
// after creation; clients are expected to collect results well before that.
var jobs = newJobStore(time.Hour)

func (s *jobStore) create(total int) string {
	id := "batch-" + randomID()
	s.mu.Lock()
	s.jobs[id] = &models.BatchJob{
		ID:        id,
		Status:    "processing",
		Total:     total,
		CreatedAt: time.Now().Unix(),
	}
	s.mu.Unlock()
	return id
}

func (s *jobStore) update(id string, fn func(*models.BatchJob)) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
	s.mu.Unlock()
}

// status returns a consistent snapshot of the job for polling responses.
func (s *jobStore) status(id string) (models.BatchStatusResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.BatchStatusResponse{}, false
	}
	return models.BatchStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Completed: job.Completed,
		Total:     job.Total,
		Results:   job.Results,
	}, true
}

func (s *jobStore) sweepLoop(maxAge time.Duration) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-maxAge).Unix()
		s.mu.Lock()
		for id, job := range s.jobs {
			if job.CreatedAt < cutoff {
				delete(s.jobs, id)
			}
		}
		s.mu.Unlock()
	}
}

// PostBatch returns a handler for POST /api/v1/batch/scrape. It validates
// the payload, creates a job, and runs the scrape in the background; results
// are fetched via GET /api/v1/batch/:id and stay aligned with input order.
// An empty link set is valid and completes immediately with no results.
func PostBatch(rd batch.Renderer, batchCfg config.BatchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if max := batchCfg.MaxLinks; max > 0 && len(req.Links.Links) > max {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "too many links in batch",
				},
			})
			return
		}

		total := len(req.Links.Links)
		jobID := jobs.create(total)

		go runBatch(rd, jobID, req)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, ok := jobs.status(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// runBatch executes the batch, publishing per-link progress, and stores the
// terminal job state.
func runBatch(rd batch.Renderer, jobID string, req models.BatchRequest) {
	sc := batch.New(rd, batch.Options{
		BaseURL:     req.BaseURL,
		Concurrency: req.Concurrency,
		Render:      req.Options,
		OnProgress: func(completed int) {
			jobs.update(jobID, func(j *models.BatchJob) { j.Completed = completed })
		},
	})

	results := sc.Scrape(context.Background(), req.Links.Links)

	failed := 0
	for _, res := range results {
		if res.Status == models.StatusError {
			failed++
		}
	}

	jobs.update(jobID, func(j *models.BatchJob) {
		switch {
		case len(results) == 0:
			j.Status = "completed"
		case failed == len(results):
			j.Status = "failed"
		case failed > 0:
			j.Status = "partial"
		default:
			j.Status = "completed"
		}
		j.Completed = len(results)
		j.Results = results
	})
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
