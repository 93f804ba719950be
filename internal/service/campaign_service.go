// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/queue"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

const (
	maxWebsiteSnippets    = 5
	maxSharePointSnippets = 3
	contextSourceCap      = 1000 // chars per context source
	diversityWindow       = 3    // trailing post bodies fed back into the prompt
)

// ChatCompleter is the slice of the LLM client the service needs.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	PostRepo     repository.PostRepositoryInterface
	BrandRepo    repository.BrandRepositoryInterface
	SnippetRepo  repository.SnippetRepositoryInterface
	Completer    ChatCompleter
	Queue        queue.Queue
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

func (s *CampaignService) CreateCampaign(c *model.Campaign) (*model.Campaign, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("campaign name cannot be empty")
	}
	if c.PostCount <= 0 {
		c.PostCount = len(c.Topics)
	}
	c.Status = model.CampaignStatusDraft

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) UpdateCampaign(c *model.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("campaign name cannot be empty")
	}
	return s.CampaignRepo.Update(c)
}

// DeleteCampaign removes the campaign and, via cascade, its posts and images.
func (s *CampaignService) DeleteCampaign(id int) error {
	if _, err := s.CampaignRepo.GetByID(id); err != nil {
		return err
	}
	return s.CampaignRepo.Delete(id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(spaceID, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(spaceID, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetails(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}

// GetCampaignDetailsWithStats returns a campaign plus post counts by status.
func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.PostRepo.CampaignStats(campaignID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range stats {
		total += count
	}
	stats["total"] = total

	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

// EnqueueGeneration queues a generation job for the campaign and flips it to
// running. The browser polls the campaign row for completion.
func (s *CampaignService) EnqueueGeneration(campaignID int) error {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == model.CampaignStatusRunning {
		return fmt.Errorf("campaign %d is already generating", campaignID)
	}

	if err := s.Queue.Publish(queue.TopicCampaignGenerations, queue.GenerationJob{CampaignID: campaignID}); err != nil {
		return err
	}

	return s.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusRunning)
}

// GenerateIdeas asks the model for topic ideas and stores them on the
// campaign. One completion call; the raw list is split on newlines.
func (s *CampaignService) GenerateIdeas(campaignID, count int) ([]string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		count = campaign.PostCount
	}
	if count < 1 {
		count = 5
	}

	system := "You are a social media strategist. Respond with one post topic per line, no numbering, no commentary."
	user := fmt.Sprintf("Suggest %d social media post topics for a campaign named %q.", count, campaign.Name)
	if ctx := s.buildContext(campaign); ctx != "" {
		user += "\n\nBackground about the brand:\n" + ctx
	}

	raw, err := s.Completer.Complete(context.Background(), system, user)
	if err != nil {
		return nil, err
	}

	ideas := parseIdeaList(raw, count)
	if err := s.CampaignRepo.UpdateGeneratedIdeas(campaignID, ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

func parseIdeaList(raw string, limit int) []string {
	ideas := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		ideas = append(ideas, line)
		if len(ideas) == limit {
			break
		}
	}
	return ideas
}

// GeneratePosts runs the batch generation procedure for a campaign: one
// sequential completion call per topic, best effort. A per-topic failure is
// logged and skipped; the campaign is marked completed regardless of how many
// posts actually landed. Re-invoking appends new posts rather than resuming.
func (s *CampaignService) GeneratePosts(campaignID int) (int, int, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return 0, 0, err
	}

	if campaign.Status != model.CampaignStatusRunning {
		if err := s.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusRunning); err != nil {
			return 0, 0, err
		}
	}

	template := campaign.PromptTemplate
	if strings.TrimSpace(template) == "" {
		template = defaultPostPrompt
	}

	contextBlob := s.buildContext(campaign)
	topics := s.resolveTopics(campaign)

	generated := 0
	failed := 0
	for i, topic := range topics {
		recent, err := s.PostRepo.RecentBodies(campaignID, diversityWindow)
		if err != nil {
			slog.Warn("[CampaignService] Failed to load recent bodies", slog.Any("error", err))
			recent = nil
		}

		system := buildSystemInstruction(campaign, contextBlob, recent)
		user := RenderPrompt(template, map[string]string{
			"topic":    topic,
			"tone":     campaign.Tone,
			"audience": campaign.Audience,
			"length":   campaign.Length,
		})

		body, err := s.Completer.Complete(context.Background(), system, user)
		if err != nil {
			slog.Warn("[CampaignService] Generation failed for topic",
				slog.Int("campaign_id", campaignID),
				slog.String("topic", topic),
				slog.Any("error", err))
			failed++
			continue
		}

		post := &model.Post{
			CampaignID: campaignID,
			Topic:      topic,
			Body:       scrubDashes(strings.TrimSpace(body)),
			Status:     model.PostStatusDraft,
			Sequence:   i + 1,
		}
		if err := s.PostRepo.Create(post); err != nil {
			slog.Warn("[CampaignService] Failed to insert post",
				slog.Int("campaign_id", campaignID),
				slog.String("topic", topic),
				slog.Any("error", err))
			failed++
			continue
		}
		generated++
	}

	// Completed regardless of per-topic failures; the caller sees the counts.
	if err := s.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusCompleted); err != nil {
		return generated, failed, err
	}

	slog.Info("[CampaignService] Generation finished",
		slog.Int("campaign_id", campaignID),
		slog.Int("generated", generated),
		slog.Int("failed", failed))
	return generated, failed, nil
}

func (s *CampaignService) resolveTopics(campaign *model.Campaign) []string {
	topics := []string(campaign.Topics)
	if len(topics) == 0 {
		topics = []string(campaign.GeneratedIdeas)
	}
	if campaign.PostCount > 0 && len(topics) > campaign.PostCount {
		topics = topics[:campaign.PostCount]
	}
	return topics
}

// buildContext concatenates the enabled grounding sources, each capped to the
// per-source budget.
func (s *CampaignService) buildContext(campaign *model.Campaign) string {
	parts := []string{}

	if campaign.UseManual {
		brand, err := s.BrandRepo.GetBySpace(campaign.SpaceID)
		if err != nil {
			slog.Warn("[CampaignService] Failed to load brand profile", slog.Any("error", err))
		} else if brand != nil {
			fields := []string{}
			if brand.WhoWeAre != "" {
				fields = append(fields, "Who we are: "+brand.WhoWeAre)
			}
			if brand.ToneNotes != "" {
				fields = append(fields, "Tone notes: "+brand.ToneNotes)
			}
			if brand.Audience != "" {
				fields = append(fields, "Audience: "+brand.Audience)
			}
			if len(fields) > 0 {
				parts = append(parts, capText(strings.Join(fields, "\n"), contextSourceCap))
			}
		}
	}

	if campaign.UseWebsite {
		if blob := s.snippetBlob(campaign.SpaceID, model.SnippetSourceWebsite, maxWebsiteSnippets); blob != "" {
			parts = append(parts, blob)
		}
	}

	if campaign.UseSharePoint {
		if blob := s.snippetBlob(campaign.SpaceID, model.SnippetSourceSharePoint, maxSharePointSnippets); blob != "" {
			parts = append(parts, blob)
		}
	}

	return strings.Join(parts, "\n\n")
}

func (s *CampaignService) snippetBlob(spaceID int, source string, limit int) string {
	snippets, err := s.SnippetRepo.ListBySource(spaceID, source, limit)
	if err != nil {
		slog.Warn("[CampaignService] Failed to load snippets",
			slog.String("source", source), slog.Any("error", err))
		return ""
	}

	texts := make([]string, 0, len(snippets))
	for _, sn := range snippets {
		texts = append(texts, sn.Content)
	}
	if len(texts) == 0 {
		return ""
	}
	return capText(strings.Join(texts, "\n"), contextSourceCap)
}

func buildSystemInstruction(campaign *model.Campaign, contextBlob string, recent []string) string {
	var b strings.Builder
	b.WriteString("You write social media posts in Australian English. ")
	b.WriteString("Never use em dashes or en dashes. ")

	if campaign.UseHashtags {
		b.WriteString("Finish with 2-3 relevant hashtags. ")
	} else {
		b.WriteString("Do not include hashtags. ")
	}
	if campaign.UseEmojis {
		b.WriteString("A couple of emojis are fine. ")
	} else {
		b.WriteString("Do not use emojis. ")
	}
	if campaign.UseCTA {
		b.WriteString("End with a clear call to action. ")
	}

	if contextBlob != "" {
		b.WriteString("\n\nUse this background about the brand:\n")
		b.WriteString(contextBlob)
	}

	if len(recent) > 0 {
		b.WriteString("\n\nThese posts were already written for the campaign. Do not repeat their angle:\n")
		for _, body := range recent {
			b.WriteString("- ")
			b.WriteString(capText(body, 200))
			b.WriteString("\n")
		}
	}

	return b.String()
}
