// internal/handler/webhook_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
	"github.com/spaceshq/spaces-backend/internal/service"
)

// WebhookHandler receives run-completion callbacks from the scraper control
// plane.
type WebhookHandler struct {
	SyncService *service.SyncService
}

// ScraperWebhook ingests the dataset items of a finished actor run. The
// scraper retries delivery on non-2xx, so a run we never started is answered
// 200 to stop redelivery, while ingest failures return 500 so the delivery
// is retried.
func (h *WebhookHandler) ScraperWebhook(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RunID string           `json:"run_id"`
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.RunID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	if err := h.SyncService.HandleWebhook(payload.RunID, payload.Items); err != nil {
		var notFound *appErrors.ErrSyncJobNotFound
		if errors.As(err, &notFound) {
			slog.Warn("[WebhookHandler] Ignoring webhook for unknown run",
				slog.String("run_id", payload.RunID))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ignored"})
			return
		}
		slog.Error("[WebhookHandler] Webhook ingest failed",
			slog.String("run_id", payload.RunID), slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
