// internal/controller/buyict_controller.go
package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type BuyICTController struct {
	BuyICTService   *service.BuyICTService
	SyncService     *service.SyncService
	OpportunityRepo repository.OpportunityRepositoryInterface
	SyncJobRepo     repository.SyncJobRepositoryInterface
}

func (c *BuyICTController) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")
	department := r.URL.Query().Get("department")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	opportunities, pagination, err := c.BuyICTService.ListOpportunities(spaceID(r), page, pageSize, status, department)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"data":       opportunities,
		"pagination": pagination,
	})
}

// ImportCSV accepts either a multipart upload with a "file" field or a raw
// text/csv body.
func (c *BuyICTController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	var reader io.Reader = r.Body

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		reader = file
	}

	result, err := c.BuyICTService.ImportCSV(spaceID(r), reader)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, result)
}

func (c *BuyICTController) UpdateOpportunityStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid opportunity id", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.OpportunityRepo.UpdateStatus(id, body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"id": id, "status": body.Status})
}

func (c *BuyICTController) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid opportunity id", http.StatusBadRequest)
		return
	}

	if err := c.OpportunityRepo.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *BuyICTController) ListOrganisations(w http.ResponseWriter, r *http.Request) {
	organisations, err := c.BuyICTService.ListOrganisations(spaceID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"data": organisations})
}

func (c *BuyICTController) ListContacts(w http.ResponseWriter, r *http.Request) {
	organisationID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid organisation id", http.StatusBadRequest)
		return
	}

	contacts, err := c.BuyICTService.ListContacts(organisationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"data": contacts})
}

func (c *BuyICTController) CreateContact(w http.ResponseWriter, r *http.Request) {
	organisationID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid organisation id", http.StatusBadRequest)
		return
	}

	var body struct {
		Name  string `json:"name"`
		Role  string `json:"role"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	contact := &model.Contact{
		OrganisationID: organisationID,
		Name:           body.Name,
		Role:           body.Role,
		Email:          body.Email,
		Phone:          body.Phone,
	}
	if err := c.BuyICTService.CreateContact(contact); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, contact)
}

func (c *BuyICTController) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := c.BuyICTService.ListMappings(spaceID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"data": mappings})
}

func (c *BuyICTController) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern    string `json:"pattern"`
		MatchType  string `json:"match_type"`
		Department string `json:"department"`
		Priority   int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	mapping := &model.DepartmentMapping{
		SpaceID:    spaceID(r),
		Pattern:    body.Pattern,
		MatchType:  body.MatchType,
		Department: body.Department,
		Priority:   body.Priority,
	}
	if err := c.BuyICTService.CreateMapping(mapping); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, mapping)
}

func (c *BuyICTController) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid mapping id", http.StatusBadRequest)
		return
	}

	if err := c.BuyICTService.DeleteMapping(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestMapping lets the UI try a pattern against a sample buyer entity before
// saving it.
func (c *BuyICTController) TestMapping(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern   string `json:"pattern"`
		MatchType string `json:"match_type"`
		Sample    string `json:"sample"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	matched, err := service.MatchesMapping(body.Pattern, body.MatchType, body.Sample)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]interface{}{"matched": matched})
}

func (c *BuyICTController) StartSync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind  string         `json:"kind"`
		Input map[string]any `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	job, err := c.SyncService.StartRun(spaceID(r), body.Kind, body.Input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, job)
}

// GetSyncJob is the polling endpoint the browser hits while a run is active.
func (c *BuyICTController) GetSyncJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid sync job id", http.StatusBadRequest)
		return
	}

	job, err := c.SyncJobRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if job == nil {
		http.Error(w, "sync job not found", http.StatusNotFound)
		return
	}

	writeJSON(w, job)
}
