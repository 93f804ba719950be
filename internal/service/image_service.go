// internal/service/image_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

// LogoOverlayMarker prefixes prompt_used once a logo has been composited onto
// an image. Bulk logo application skips anything already carrying it.
const LogoOverlayMarker = "[logo-overlay]"

// DefaultImageDelay is the fixed pause between third-party calls in a bulk
// loop, purely to stay under the provider's rate limit.
const DefaultImageDelay = 2 * time.Second

// ImageGenerator is the slice of the image API the service needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageStore uploads rendered images and returns their public URL.
type ImageStore interface {
	Upload(path, contentType string, data []byte) (string, error)
}

type ImageService struct {
	PostRepo  repository.PostRepositoryInterface
	ImageRepo repository.PostImageRepositoryInterface
	BrandRepo repository.BrandRepositoryInterface
	Generator ImageGenerator
	Store     ImageStore
	ItemDelay time.Duration
}

// BulkResult summarises a best-effort batch; item failures never halt the loop.
type BulkResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// GenerateForPosts renders one image per post, sequentially, with a fixed
// delay between items.
func (s *ImageService) GenerateForPosts(spaceID int, postIDs []int) (*BulkResult, error) {
	brand, err := s.BrandRepo.GetBySpace(spaceID)
	if err != nil {
		slog.Warn("[ImageService] Failed to load brand profile", slog.Any("error", err))
	}

	result := &BulkResult{}
	for i, postID := range postIDs {
		if i > 0 && s.ItemDelay > 0 {
			time.Sleep(s.ItemDelay)
		}

		post, err := s.PostRepo.GetByID(postID)
		if err != nil {
			slog.Warn("[ImageService] Post lookup failed", slog.Int("post_id", postID), slog.Any("error", err))
			result.Failed++
			continue
		}

		prompt := imagePrompt(post, brand)
		data, err := s.Generator.GenerateImage(context.Background(), prompt)
		if err != nil {
			slog.Warn("[ImageService] Image generation failed", slog.Int("post_id", postID), slog.Any("error", err))
			s.PostRepo.UpdateImageStatus(postID, model.ImageStatusFailed)
			result.Failed++
			continue
		}

		path := fmt.Sprintf("posts/%d/%s.png", postID, uuid.NewString())
		publicURL, err := s.Store.Upload(path, "image/png", data)
		if err != nil {
			slog.Warn("[ImageService] Upload failed", slog.Int("post_id", postID), slog.Any("error", err))
			s.PostRepo.UpdateImageStatus(postID, model.ImageStatusFailed)
			result.Failed++
			continue
		}

		existing, err := s.ImageRepo.ListByPost(postID)
		if err != nil {
			slog.Warn("[ImageService] Listing images failed", slog.Int("post_id", postID), slog.Any("error", err))
		}

		img := &model.PostImage{
			PostID:      postID,
			StoragePath: path,
			PublicURL:   publicURL,
			IsPrimary:   len(existing) == 0,
			PromptUsed:  prompt,
			Status:      model.ImageStatusGenerated,
		}
		if err := s.ImageRepo.Create(img); err != nil {
			slog.Warn("[ImageService] Image insert failed", slog.Int("post_id", postID), slog.Any("error", err))
			result.Failed++
			continue
		}

		s.PostRepo.UpdateImageStatus(postID, model.ImageStatusGenerated)
		result.Succeeded++
	}

	return result, nil
}

// ApplyLogo composites the brand logo onto each image, sequentially. Images
// whose prompt already starts with the overlay marker are skipped so a re-run
// never double-stamps.
func (s *ImageService) ApplyLogo(spaceID int, imageIDs []int) (*BulkResult, error) {
	brand, err := s.BrandRepo.GetBySpace(spaceID)
	if err != nil {
		return nil, err
	}
	if brand == nil || brand.LogoURL == "" {
		return nil, fmt.Errorf("no logo configured for space %d", spaceID)
	}

	images, err := s.ImageRepo.ListByIDs(imageIDs)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for i, img := range images {
		if strings.HasPrefix(img.PromptUsed, LogoOverlayMarker) {
			result.Skipped++
			continue
		}

		if i > 0 && s.ItemDelay > 0 {
			time.Sleep(s.ItemDelay)
		}

		overlayPrompt := fmt.Sprintf("%s %s. Composite the brand logo (%s) in the %s corner.",
			LogoOverlayMarker, img.PromptUsed, brand.LogoURL, logoPosition(brand))

		data, err := s.Generator.GenerateImage(context.Background(), overlayPrompt)
		if err != nil {
			slog.Warn("[ImageService] Logo compose failed", slog.Int("image_id", img.ID), slog.Any("error", err))
			s.PostRepo.UpdateOverlayStatus(img.PostID, "failed")
			result.Failed++
			continue
		}

		path := fmt.Sprintf("posts/%d/%s.png", img.PostID, uuid.NewString())
		publicURL, err := s.Store.Upload(path, "image/png", data)
		if err != nil {
			slog.Warn("[ImageService] Upload failed", slog.Int("image_id", img.ID), slog.Any("error", err))
			s.PostRepo.UpdateOverlayStatus(img.PostID, "failed")
			result.Failed++
			continue
		}

		if err := s.ImageRepo.UpdateStorage(img.ID, path, publicURL); err != nil {
			slog.Warn("[ImageService] Storage update failed", slog.Int("image_id", img.ID), slog.Any("error", err))
			result.Failed++
			continue
		}
		if err := s.ImageRepo.UpdatePrompt(img.ID, overlayPrompt); err != nil {
			slog.Warn("[ImageService] Prompt update failed", slog.Int("image_id", img.ID), slog.Any("error", err))
		}

		s.PostRepo.UpdateOverlayStatus(img.PostID, "applied")
		result.Succeeded++
	}

	return result, nil
}

func (s *ImageService) SetPrimary(postID, imageID int) error {
	return s.ImageRepo.SetPrimary(postID, imageID)
}

func (s *ImageService) ListForPost(postID int) ([]model.PostImage, error) {
	return s.ImageRepo.ListByPost(postID)
}

func imagePrompt(post *model.Post, brand *model.BrandProfile) string {
	prompt := fmt.Sprintf("A clean social media graphic illustrating: %s.", post.Topic)
	if brand != nil && brand.ToneNotes != "" {
		prompt += " Visual style: " + brand.ToneNotes + "."
	}
	return prompt
}

func logoPosition(brand *model.BrandProfile) string {
	if brand.LogoPosition == "" {
		return "bottom-right"
	}
	return brand.LogoPosition
}
