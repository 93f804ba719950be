// internal/controller/integration_controller.go
package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spaceshq/spaces-backend/internal/service"
)

type IntegrationController struct {
	SharePointService *service.SharePointService
	SyncService       *service.SyncService
}

// Connect returns the Microsoft authorize URL the browser redirects to.
func (c *IntegrationController) Connect(w http.ResponseWriter, r *http.Request) {
	id := spaceID(r)
	if id == 0 {
		http.Error(w, "space id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{"auth_url": c.SharePointService.ConnectURL(id)})
}

// Callback completes the authorization-code flow. The space id comes back in
// the OAuth state parameter.
func (c *IntegrationController) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	var id int
	if _, err := fmt.Sscanf(state, "space:%d", &id); err != nil {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	integration, err := c.SharePointService.CompleteConnection(id,
		code, r.URL.Query().Get("site_id"), r.URL.Query().Get("drive_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, integration)
}

func (c *IntegrationController) Browse(w http.ResponseWriter, r *http.Request) {
	items, err := c.SharePointService.Browse(spaceID(r), r.URL.Query().Get("folder"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"data": items})
}

func (c *IntegrationController) Sync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Files []service.SyncFileRef `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(body.Files) == 0 {
		http.Error(w, "files is required", http.StatusBadRequest)
		return
	}

	synced, err := c.SharePointService.SyncFiles(spaceID(r), body.Files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"synced": synced})
}

// Crawl starts the website crawler actor for the space.
func (c *IntegrationController) Crawl(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WebsiteURL string `json:"website_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	job, err := c.SyncService.StartWebsiteCrawl(spaceID(r), body.WebsiteURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, job)
}
