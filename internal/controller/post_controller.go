// internal/controller/post_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type PostController struct {
	PostRepo     repository.PostRepositoryInterface
	ImageService *service.ImageService
}

func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	posts, err := c.PostRepo.ListByCampaign(campaignID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"data": posts})
}

func (c *PostController) UpdatePostStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	switch body.Status {
	case model.PostStatusDraft, model.PostStatusReady, model.PostStatusScheduled, model.PostStatusPublished:
	default:
		http.Error(w, "invalid post status", http.StatusBadRequest)
		return
	}

	if err := c.PostRepo.UpdateStatus(id, body.Status); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"id": id, "status": body.Status})
}

func (c *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if err := c.PostRepo.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *PostController) ListImages(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	images, err := c.ImageService.ListForPost(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"data": images})
}

// BulkGenerateImages runs the sequential per-post image loop and returns the
// success/error counters.
func (c *PostController) BulkGenerateImages(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostIDs []int `json:"post_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(body.PostIDs) == 0 {
		http.Error(w, "post_ids is required", http.StatusBadRequest)
		return
	}

	result, err := c.ImageService.GenerateForPosts(spaceID(r), body.PostIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, result)
}

func (c *PostController) BulkApplyLogo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ImageIDs []int `json:"image_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(body.ImageIDs) == 0 {
		http.Error(w, "image_ids is required", http.StatusBadRequest)
		return
	}

	result, err := c.ImageService.ApplyLogo(spaceID(r), body.ImageIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, result)
}

func (c *PostController) SetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	imageID, err := strconv.Atoi(chi.URLParam(r, "imageID"))
	if err != nil {
		http.Error(w, "invalid image id", http.StatusBadRequest)
		return
	}

	if err := c.ImageService.SetPrimary(postID, imageID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"post_id": postID, "primary_image_id": imageID})
}
