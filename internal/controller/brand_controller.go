// internal/controller/brand_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type BrandController struct {
	BrandService *service.BrandService
}

func (c *BrandController) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.BrandService.GetProfile(spaceID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, profile)
}

func (c *BrandController) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WhoWeAre     string `json:"who_we_are"`
		ToneNotes    string `json:"tone_notes"`
		Audience     string `json:"audience"`
		LogoURL      string `json:"logo_url"`
		LogoPosition string `json:"logo_position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	profile := &model.BrandProfile{
		SpaceID:      spaceID(r),
		WhoWeAre:     body.WhoWeAre,
		ToneNotes:    body.ToneNotes,
		Audience:     body.Audience,
		LogoURL:      body.LogoURL,
		LogoPosition: body.LogoPosition,
	}
	if err := c.BrandService.UpsertProfile(profile); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, profile)
}

func (c *BrandController) GenerateProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.BrandService.GenerateProfile(spaceID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, profile)
}
