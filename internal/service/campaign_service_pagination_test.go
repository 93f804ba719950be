package service_test

import (
	"testing"
	"time"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

// Mock campaign repository for pagination
type MockCampaignPaginationRepo struct{}

func (m *MockCampaignPaginationRepo) ListCampaigns(spaceID, offset, limit int, status string) ([]*model.Campaign, int, error) {
	all := []*model.Campaign{
		{ID: 5, Name: "C5"},
		{ID: 4, Name: "C4"},
		{ID: 3, Name: "C3"},
		{ID: 2, Name: "C2"},
		{ID: 1, Name: "C1"},
	}

	start := offset
	end := offset + limit

	if start >= len(all) {
		return []*model.Campaign{}, len(all), nil
	}
	if end > len(all) {
		end = len(all)
	}

	return all[start:end], len(all), nil
}

// Stub implementations to satisfy the interface
func (m *MockCampaignPaginationRepo) Create(c *model.Campaign) error {
	c.ID = 999 // fake ID
	c.CreatedAt = time.Now()
	return nil
}

func (m *MockCampaignPaginationRepo) GetByID(id int) (*model.Campaign, error) {
	return &model.Campaign{ID: id, Name: "Mock"}, nil
}

func (m *MockCampaignPaginationRepo) Update(c *model.Campaign) error { return nil }

func (m *MockCampaignPaginationRepo) UpdateStatus(campaignID int, status string) error { return nil }

func (m *MockCampaignPaginationRepo) UpdateGeneratedIdeas(campaignID int, ideas []string) error {
	return nil
}

func (m *MockCampaignPaginationRepo) Delete(id int) error { return nil }

func TestPagination(t *testing.T) {
	svc := &service.CampaignService{
		CampaignRepo: &MockCampaignPaginationRepo{},
	}

	pageSize := 2

	page1, pagination1, _ := svc.ListCampaigns(1, 1, pageSize, "")
	page2, _, _ := svc.ListCampaigns(1, 2, pageSize, "")

	expectedTotal := 5
	if pagination1["total_count"] != expectedTotal {
		t.Errorf("expected total_count %d, got %d", expectedTotal, pagination1["total_count"])
	}
	if pagination1["total_pages"] != 3 {
		t.Errorf("expected total_pages 3, got %d", pagination1["total_pages"])
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("expected full pages, got %d and %d", len(page1), len(page2))
	}

	// Check descending order
	if page1[0].ID <= page1[1].ID {
		t.Errorf("expected descending order in page 1")
	}
	if page2[0].ID <= page2[1].ID {
		t.Errorf("expected descending order in page 2")
	}

	// Check no duplicates between pages
	if page1[1].ID == page2[0].ID {
		t.Errorf("duplicate entry between pages: %v", page1[1].ID)
	}

	// Check last page
	page3, pagination3, _ := svc.ListCampaigns(1, 3, pageSize, "")
	if len(page3) != 1 {
		t.Errorf("expected last page to have 1 item, got %d", len(page3))
	}

	if pagination3["total_count"] != expectedTotal {
		t.Errorf("expected total_count %d, got %d", expectedTotal, pagination3["total_count"])
	}
}
