package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

// Mock repositories

type MockCampaignRepo struct {
	campaign *model.Campaign
	statuses []string
}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	return m.campaign, nil
}

func (m *MockCampaignRepo) UpdateStatus(campaignID int, status string) error {
	m.statuses = append(m.statuses, status)
	m.campaign.Status = status
	return nil
}

func (m *MockCampaignRepo) Create(c *model.Campaign) error { c.ID = 1; return nil }
func (m *MockCampaignRepo) Update(c *model.Campaign) error { return nil }
func (m *MockCampaignRepo) ListCampaigns(spaceID, offset, limit int, status string) ([]*model.Campaign, int, error) {
	return []*model.Campaign{}, 0, nil
}
func (m *MockCampaignRepo) UpdateGeneratedIdeas(campaignID int, ideas []string) error {
	m.campaign.GeneratedIdeas = ideas
	return nil
}

func (m *MockCampaignRepo) Delete(id int) error {
	m.campaign = nil
	return nil
}

type MockPostRepo struct {
	mu    sync.Mutex
	posts []*model.Post
}

func (m *MockPostRepo) Create(p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = len(m.posts) + 1
	m.posts = append(m.posts, p)
	return nil
}

func (m *MockPostRepo) RecentBodies(campaignID, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bodies := []string{}
	for i := len(m.posts) - 1; i >= 0 && len(bodies) < limit; i-- {
		bodies = append(bodies, m.posts[i].Body)
	}
	return bodies, nil
}

func (m *MockPostRepo) GetByID(id int) (*model.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("post %d not found", id)
}

func (m *MockPostRepo) ListByCampaign(campaignID int) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range m.posts {
		out = append(out, *p)
	}
	return out, nil
}

// Stub implementations to satisfy the interface
func (m *MockPostRepo) UpdateStatus(id int, status string) error               { return nil }
func (m *MockPostRepo) UpdateImageStatus(id int, imageStatus string) error     { return nil }
func (m *MockPostRepo) UpdateOverlayStatus(id int, overlayStatus string) error { return nil }
func (m *MockPostRepo) Delete(id int) error                                    { return nil }
func (m *MockPostRepo) CampaignStats(campaignID int) (map[string]int, error) {
	return map[string]int{"draft": len(m.posts)}, nil
}

type MockBrandRepo struct {
	profile *model.BrandProfile
}

func (m *MockBrandRepo) GetBySpace(spaceID int) (*model.BrandProfile, error) {
	return m.profile, nil
}
func (m *MockBrandRepo) Upsert(bp *model.BrandProfile) error { return nil }

type MockSnippetRepo struct {
	snippets map[string][]model.ContentSnippet
}

func (m *MockSnippetRepo) ListBySource(spaceID int, source string, limit int) ([]model.ContentSnippet, error) {
	list := m.snippets[source]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
func (m *MockSnippetRepo) ReplaceForSource(spaceID int, source string, snippets []model.ContentSnippet) error {
	return nil
}

// MockCompleter answers each call in order; an entry starting with "ERR"
// becomes an error.
type MockCompleter struct {
	replies []string
	calls   int
	systems []string
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.systems = append(m.systems, system)
	reply := "default reply"
	if m.calls < len(m.replies) {
		reply = m.replies[m.calls]
	}
	m.calls++
	if strings.HasPrefix(reply, "ERR") {
		return "", fmt.Errorf("completion failed")
	}
	return reply, nil
}

func newTestService(campaign *model.Campaign, completer *MockCompleter) (*service.CampaignService, *MockCampaignRepo, *MockPostRepo) {
	campaignRepo := &MockCampaignRepo{campaign: campaign}
	postRepo := &MockPostRepo{}
	svc := &service.CampaignService{
		CampaignRepo: campaignRepo,
		PostRepo:     postRepo,
		BrandRepo:    &MockBrandRepo{},
		SnippetRepo:  &MockSnippetRepo{},
		Completer:    completer,
	}
	return svc, campaignRepo, postRepo
}

func TestGeneratePostsOnePerTopic(t *testing.T) {
	campaign := &model.Campaign{
		ID:      1,
		SpaceID: 1,
		Name:    "Launch",
		Status:  model.CampaignStatusRunning,
		Topics:  []string{"Topic A", "Topic B", "Topic C"},
	}
	completer := &MockCompleter{replies: []string{"Post one", "Post two", "Post three"}}
	svc, _, postRepo := newTestService(campaign, completer)

	generated, failed, err := svc.GeneratePosts(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generated != 3 || failed != 0 {
		t.Fatalf("expected 3 generated / 0 failed, got %d / %d", generated, failed)
	}

	if len(postRepo.posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(postRepo.posts))
	}
	for i, p := range postRepo.posts {
		if p.Sequence != i+1 {
			t.Errorf("post %d: expected sequence %d, got %d", i, i+1, p.Sequence)
		}
		if p.Status != model.PostStatusDraft {
			t.Errorf("post %d: expected draft, got %s", i, p.Status)
		}
	}

	if campaign.Status != model.CampaignStatusCompleted {
		t.Errorf("expected campaign completed, got %s", campaign.Status)
	}
}

func TestGeneratePostsContinuesPastFailures(t *testing.T) {
	campaign := &model.Campaign{
		ID:      1,
		SpaceID: 1,
		Name:    "Launch",
		Status:  model.CampaignStatusRunning,
		Topics:  []string{"Topic A", "Topic B", "Topic C"},
	}
	completer := &MockCompleter{replies: []string{"Post one", "ERR", "Post three"}}
	svc, _, postRepo := newTestService(campaign, completer)

	generated, failed, err := svc.GeneratePosts(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generated != 2 || failed != 1 {
		t.Fatalf("expected 2 generated / 1 failed, got %d / %d", generated, failed)
	}

	// The failed topic leaves no post behind; surviving ones keep their slot.
	if len(postRepo.posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(postRepo.posts))
	}
	if postRepo.posts[0].Sequence != 1 || postRepo.posts[1].Sequence != 3 {
		t.Errorf("expected sequences 1 and 3, got %d and %d",
			postRepo.posts[0].Sequence, postRepo.posts[1].Sequence)
	}

	// Completed even though one topic failed.
	if campaign.Status != model.CampaignStatusCompleted {
		t.Errorf("expected campaign completed, got %s", campaign.Status)
	}
}

func TestGeneratePostsScrubsDashes(t *testing.T) {
	campaign := &model.Campaign{
		ID:      1,
		SpaceID: 1,
		Name:    "Launch",
		Status:  model.CampaignStatusRunning,
		Topics:  []string{"Topic A"},
	}
	completer := &MockCompleter{replies: []string{"Big news — we launched – today"}}
	svc, _, postRepo := newTestService(campaign, completer)

	if _, _, err := svc.GeneratePosts(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := postRepo.posts[0].Body
	if strings.ContainsAny(body, "—–") {
		t.Errorf("expected dashes scrubbed, got %q", body)
	}
	if !strings.Contains(body, "we launched") {
		t.Errorf("body mangled: %q", body)
	}
}

func TestGeneratePostsFallsBackToGeneratedIdeas(t *testing.T) {
	campaign := &model.Campaign{
		ID:             1,
		SpaceID:        1,
		Name:           "Launch",
		Status:         model.CampaignStatusRunning,
		PostCount:      2,
		GeneratedIdeas: []string{"Idea A", "Idea B", "Idea C"},
	}
	completer := &MockCompleter{replies: []string{"Post one", "Post two"}}
	svc, _, postRepo := newTestService(campaign, completer)

	generated, _, err := svc.GeneratePosts(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ideas are truncated to post_count when no manual topics exist.
	if generated != 2 {
		t.Fatalf("expected 2 generated, got %d", generated)
	}
	if postRepo.posts[0].Topic != "Idea A" || postRepo.posts[1].Topic != "Idea B" {
		t.Errorf("expected first two ideas as topics, got %q and %q",
			postRepo.posts[0].Topic, postRepo.posts[1].Topic)
	}
}

func TestGeneratePostsFeedsBrandContext(t *testing.T) {
	campaign := &model.Campaign{
		ID:        1,
		SpaceID:   1,
		Name:      "Launch",
		Status:    model.CampaignStatusRunning,
		UseManual: true,
		Topics:    []string{"Topic A"},
	}
	completer := &MockCompleter{replies: []string{"Post one"}}
	svc, _, _ := newTestService(campaign, completer)
	svc.BrandRepo = &MockBrandRepo{profile: &model.BrandProfile{
		SpaceID:  1,
		WhoWeAre: "We build rockets",
	}}

	if _, _, err := svc.GeneratePosts(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(completer.systems) != 1 || !strings.Contains(completer.systems[0], "We build rockets") {
		t.Errorf("expected brand context in system instruction, got %q", completer.systems)
	}
}

func TestGenerateIdeasParsesList(t *testing.T) {
	campaign := &model.Campaign{
		ID:      1,
		SpaceID: 1,
		Name:    "Launch",
		Status:  model.CampaignStatusDraft,
	}
	completer := &MockCompleter{replies: []string{"1. First idea\n- Second idea\n\n* Third idea\n4. Fourth idea"}}
	svc, repo, _ := newTestService(campaign, completer)

	ideas, err := svc.GenerateIdeas(1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"First idea", "Second idea", "Third idea"}
	if len(ideas) != len(expected) {
		t.Fatalf("expected %d ideas, got %d: %v", len(expected), len(ideas), ideas)
	}
	for i, want := range expected {
		if ideas[i] != want {
			t.Errorf("idea %d: expected %q, got %q", i, want, ideas[i])
		}
	}

	if len(repo.campaign.GeneratedIdeas) != 3 {
		t.Errorf("expected ideas stored on campaign, got %v", repo.campaign.GeneratedIdeas)
	}
}

// MockQueue records published jobs.
type MockQueue struct {
	published []string
	payloads  []any
}

func (m *MockQueue) Publish(topic string, payload any) error {
	m.published = append(m.published, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}
func (m *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

func TestEnqueueGenerationRejectsRunningCampaign(t *testing.T) {
	campaign := &model.Campaign{
		ID:      1,
		SpaceID: 1,
		Name:    "Launch",
		Status:  model.CampaignStatusRunning,
	}
	svc, _, _ := newTestService(campaign, &MockCompleter{})
	q := &MockQueue{}
	svc.Queue = q

	if err := svc.EnqueueGeneration(1); err == nil {
		t.Fatal("expected error for already running campaign")
	}
	if len(q.published) != 0 {
		t.Errorf("expected no jobs published, got %d", len(q.published))
	}

	campaign.Status = model.CampaignStatusDraft
	if err := svc.EnqueueGeneration(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.published) != 1 {
		t.Fatalf("expected 1 job published, got %d", len(q.published))
	}
	if campaign.Status != model.CampaignStatusRunning {
		t.Errorf("expected campaign running, got %s", campaign.Status)
	}
}
