package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spaceshq/spaces-backend/internal/handler"
	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

// --- Mock Repositories ---

type MockSyncJobRepo struct {
	job *model.SyncJob
}

func (m *MockSyncJobRepo) Create(j *model.SyncJob) error { return nil }

func (m *MockSyncJobRepo) GetByID(id int) (*model.SyncJob, error) { return m.job, nil }

func (m *MockSyncJobRepo) GetByRunID(runID string) (*model.SyncJob, error) {
	if m.job != nil && m.job.RunID == runID {
		return m.job, nil
	}
	return nil, nil
}

func (m *MockSyncJobRepo) UpdateRun(id int, runID, status string) error { return nil }

func (m *MockSyncJobRepo) MarkCompleted(id, itemsTotal, itemsImported int) error {
	m.job.Status = model.SyncStatusCompleted
	m.job.ItemsTotal = itemsTotal
	m.job.ItemsImported = itemsImported
	return nil
}

func (m *MockSyncJobRepo) MarkFailed(id int, lastError string) error {
	m.job.Status = model.SyncStatusFailed
	m.job.LastError = lastError
	return nil
}

type MockSnippetRepo struct {
	replaced []model.ContentSnippet
	fail     bool
}

func (m *MockSnippetRepo) ListBySource(spaceID int, source string, limit int) ([]model.ContentSnippet, error) {
	return nil, nil
}

func (m *MockSnippetRepo) ReplaceForSource(spaceID int, source string, snippets []model.ContentSnippet) error {
	if m.fail {
		return fmt.Errorf("db unavailable")
	}
	m.replaced = snippets
	return nil
}

// --- Test Functions ---

func newWebhookHandler(jobRepo *MockSyncJobRepo, snippetRepo *MockSnippetRepo) *handler.WebhookHandler {
	return &handler.WebhookHandler{
		SyncService: &service.SyncService{
			SyncJobRepo: jobRepo,
			SnippetRepo: snippetRepo,
		},
	}
}

func postWebhook(t *testing.T, h *handler.WebhookHandler, payload map[string]any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/webhooks/scraper", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.ScraperWebhook(w, req)
	return w.Result()
}

func TestScraperWebhookIngestsWebsiteRun(t *testing.T) {
	jobRepo := &MockSyncJobRepo{job: &model.SyncJob{
		ID: 1, SpaceID: 7, Kind: model.SyncKindWebsite,
		RunID: "run-1", Status: model.SyncStatusRunning,
	}}
	snippetRepo := &MockSnippetRepo{}
	h := newWebhookHandler(jobRepo, snippetRepo)

	resp := postWebhook(t, h, map[string]any{
		"run_id": "run-1",
		"items":  []map[string]any{{"url": "https://example.com", "text": "About us"}},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if jobRepo.job.Status != model.SyncStatusCompleted {
		t.Errorf("expected completed, got %s", jobRepo.job.Status)
	}
	if len(snippetRepo.replaced) != 1 {
		t.Errorf("expected 1 snippet stored, got %d", len(snippetRepo.replaced))
	}
}

func TestScraperWebhookIgnoresUnknownRun(t *testing.T) {
	h := newWebhookHandler(&MockSyncJobRepo{}, &MockSnippetRepo{})

	resp := postWebhook(t, h, map[string]any{"run_id": "run-unknown"})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown run, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ignored" {
		t.Errorf("expected ignored, got %q", body["status"])
	}
}

func TestScraperWebhookReturns500OnIngestFailure(t *testing.T) {
	jobRepo := &MockSyncJobRepo{job: &model.SyncJob{
		ID: 1, SpaceID: 7, Kind: model.SyncKindWebsite,
		RunID: "run-1", Status: model.SyncStatusRunning,
	}}
	h := newWebhookHandler(jobRepo, &MockSnippetRepo{fail: true})

	resp := postWebhook(t, h, map[string]any{
		"run_id": "run-1",
		"items":  []map[string]any{{"url": "https://example.com", "text": "About us"}},
	})

	// Non-2xx makes the scraper redeliver, which is what a transient ingest
	// failure needs.
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if jobRepo.job.Status != model.SyncStatusFailed {
		t.Errorf("expected failed, got %s", jobRepo.job.Status)
	}
}

func TestScraperWebhookRejectsMissingRunID(t *testing.T) {
	h := newWebhookHandler(&MockSyncJobRepo{}, &MockSnippetRepo{})

	resp := postWebhook(t, h, map[string]any{"items": []map[string]any{}})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
