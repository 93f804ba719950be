// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name           string   `json:"name"`
		PostCount      int      `json:"post_count"`
		UseWebsite     bool     `json:"use_website"`
		UseManual      bool     `json:"use_manual"`
		UseSharePoint  bool     `json:"use_sharepoint"`
		Tone           string   `json:"tone"`
		Audience       string   `json:"audience"`
		Length         string   `json:"length"`
		UseHashtags    bool     `json:"use_hashtags"`
		UseEmojis      bool     `json:"use_emojis"`
		UseCTA         bool     `json:"use_cta"`
		Topics         []string `json:"topics"`
		PromptTemplate string   `json:"prompt_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(&model.Campaign{
		SpaceID:        spaceID(r),
		Name:           body.Name,
		PostCount:      body.PostCount,
		UseWebsite:     body.UseWebsite,
		UseManual:      body.UseManual,
		UseSharePoint:  body.UseSharePoint,
		Tone:           body.Tone,
		Audience:       body.Audience,
		Length:         body.Length,
		UseHashtags:    body.UseHashtags,
		UseEmojis:      body.UseEmojis,
		UseCTA:         body.UseCTA,
		Topics:         body.Topics,
		PromptTemplate: body.PromptTemplate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.GetCampaignDetails(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name           string   `json:"name"`
		PostCount      int      `json:"post_count"`
		UseWebsite     bool     `json:"use_website"`
		UseManual      bool     `json:"use_manual"`
		UseSharePoint  bool     `json:"use_sharepoint"`
		Tone           string   `json:"tone"`
		Audience       string   `json:"audience"`
		Length         string   `json:"length"`
		UseHashtags    bool     `json:"use_hashtags"`
		UseEmojis      bool     `json:"use_emojis"`
		UseCTA         bool     `json:"use_cta"`
		Topics         []string `json:"topics"`
		PromptTemplate string   `json:"prompt_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign.Name = body.Name
	campaign.PostCount = body.PostCount
	campaign.UseWebsite = body.UseWebsite
	campaign.UseManual = body.UseManual
	campaign.UseSharePoint = body.UseSharePoint
	campaign.Tone = body.Tone
	campaign.Audience = body.Audience
	campaign.Length = body.Length
	campaign.UseHashtags = body.UseHashtags
	campaign.UseEmojis = body.UseEmojis
	campaign.UseCTA = body.UseCTA
	campaign.Topics = body.Topics
	campaign.PromptTemplate = body.PromptTemplate

	if err := c.CampaignService.UpdateCampaign(campaign); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	if err := c.CampaignService.DeleteCampaign(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, pagination, err := c.CampaignService.ListCampaigns(spaceID(r), page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	details, err := c.CampaignService.GetCampaignDetailsWithStats(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, details)
}

func (c *CampaignController) GenerateIdeas(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	var body struct {
		Count int `json:"count"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	ideas, err := c.CampaignService.GenerateIdeas(id, body.Count)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"campaign_id": id,
		"ideas":       ideas,
	})
}

// GeneratePosts queues the generation job. The row is flipped to running and
// the client polls GET /campaigns/{id} until it reads completed. Re-invoking
// appends new posts; there is no resume.
func (c *CampaignController) GeneratePosts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	if err := c.CampaignService.EnqueueGeneration(id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"campaign_id": id,
		"status":      "running",
	})
}
