package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/spaceshq/spaces-backend/internal/clients"
	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type MockIntegrationRepo struct {
	integration *model.Integration
	statuses    []string
	tokens      int
}

func (m *MockIntegrationRepo) GetBySpaceAndProvider(spaceID int, provider string) (*model.Integration, error) {
	if m.integration == nil {
		return nil, fmt.Errorf("integration not found")
	}
	return m.integration, nil
}

func (m *MockIntegrationRepo) Upsert(i *model.Integration) error {
	i.ID = 1
	m.integration = i
	return nil
}

func (m *MockIntegrationRepo) UpdateTokens(id int, accessToken, refreshToken string, expiresAt time.Time) error {
	m.tokens++
	m.integration.AccessToken = accessToken
	m.integration.RefreshToken = refreshToken
	m.integration.ExpiresAt = expiresAt
	return nil
}

func (m *MockIntegrationRepo) UpdateStatus(id int, status string) error {
	m.statuses = append(m.statuses, status)
	m.integration.Status = status
	return nil
}

// MockSharePointAPI scripts the Microsoft side.
type MockSharePointAPI struct {
	refreshCalls int
	refreshFail  bool
	refreshToken *oauth2.Token
	files        map[string]string // item id -> content
	fetchFail    map[string]bool
}

func (m *MockSharePointAPI) AuthURL(state string) string {
	return "https://login.example/authorize?state=" + state
}

func (m *MockSharePointAPI) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (m *MockSharePointAPI) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	m.refreshCalls++
	if m.refreshFail {
		return nil, fmt.Errorf("invalid_grant")
	}
	return m.refreshToken, nil
}

func (m *MockSharePointAPI) ListChildren(ctx context.Context, accessToken, driveID, folder string) ([]clients.DriveItem, error) {
	return []clients.DriveItem{{ID: "item-1", Name: "About.docx"}}, nil
}

func (m *MockSharePointAPI) FetchFileContent(ctx context.Context, accessToken, driveID, itemID string) ([]byte, error) {
	if m.fetchFail[itemID] {
		return nil, fmt.Errorf("fetch failed")
	}
	return []byte(m.files[itemID]), nil
}

type MockReplaceSnippetRepo struct {
	replaced []model.ContentSnippet
	source   string
}

func (m *MockReplaceSnippetRepo) ListBySource(spaceID int, source string, limit int) ([]model.ContentSnippet, error) {
	return nil, nil
}
func (m *MockReplaceSnippetRepo) ReplaceForSource(spaceID int, source string, snippets []model.ContentSnippet) error {
	m.source = source
	m.replaced = snippets
	return nil
}

func connectedIntegration(expiry time.Time) *model.Integration {
	return &model.Integration{
		ID:           1,
		SpaceID:      1,
		Provider:     "sharepoint",
		Status:       model.IntegrationStatusConnected,
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    expiry,
		DriveID:      "drive-1",
	}
}

func TestEnsureTokenSkipsFreshToken(t *testing.T) {
	repo := &MockIntegrationRepo{integration: connectedIntegration(time.Now().Add(time.Hour))}
	api := &MockSharePointAPI{}
	svc := &service.SharePointService{IntegrationRepo: repo, API: api}

	integration, err := svc.EnsureToken(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.refreshCalls != 0 {
		t.Errorf("expected no refresh for a fresh token, got %d calls", api.refreshCalls)
	}
	if integration.AccessToken != "old-access" {
		t.Errorf("expected existing access token, got %q", integration.AccessToken)
	}
}

func TestEnsureTokenRefreshesNearExpiry(t *testing.T) {
	repo := &MockIntegrationRepo{integration: connectedIntegration(time.Now().Add(30 * time.Second))}
	api := &MockSharePointAPI{refreshToken: &oauth2.Token{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}}
	svc := &service.SharePointService{IntegrationRepo: repo, API: api}

	integration, err := svc.EnsureToken(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.refreshCalls != 1 {
		t.Fatalf("expected 1 refresh call, got %d", api.refreshCalls)
	}
	if integration.AccessToken != "new-access" || integration.RefreshToken != "new-refresh" {
		t.Errorf("expected rotated tokens, got %q / %q", integration.AccessToken, integration.RefreshToken)
	}
	if repo.tokens != 1 {
		t.Errorf("expected tokens persisted once, got %d", repo.tokens)
	}
}

func TestEnsureTokenKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	// Microsoft occasionally omits refresh_token from the refresh response.
	repo := &MockIntegrationRepo{integration: connectedIntegration(time.Now().Add(30 * time.Second))}
	api := &MockSharePointAPI{refreshToken: &oauth2.Token{
		AccessToken: "new-access",
		Expiry:      time.Now().Add(time.Hour),
	}}
	svc := &service.SharePointService{IntegrationRepo: repo, API: api}

	integration, err := svc.EnsureToken(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if integration.RefreshToken != "old-refresh" {
		t.Errorf("expected old refresh token kept, got %q", integration.RefreshToken)
	}
}

func TestEnsureTokenRefreshFailureMarksExpired(t *testing.T) {
	repo := &MockIntegrationRepo{integration: connectedIntegration(time.Now().Add(-time.Minute))}
	api := &MockSharePointAPI{refreshFail: true}
	svc := &service.SharePointService{IntegrationRepo: repo, API: api}

	if _, err := svc.EnsureToken(1); err == nil {
		t.Fatal("expected error from failed refresh")
	}
	// A single attempt, no retry.
	if api.refreshCalls != 1 {
		t.Errorf("expected exactly 1 refresh attempt, got %d", api.refreshCalls)
	}
	if repo.integration.Status != model.IntegrationStatusExpired {
		t.Errorf("expected status expired, got %s", repo.integration.Status)
	}

	// Once expired the connection is unusable until the user reconnects.
	if _, err := svc.EnsureToken(1); err == nil {
		t.Error("expected error for expired connection")
	}
	if api.refreshCalls != 1 {
		t.Errorf("expected no further refresh attempts, got %d", api.refreshCalls)
	}
}

func TestSyncFilesSkipsFailedFetches(t *testing.T) {
	repo := &MockIntegrationRepo{integration: connectedIntegration(time.Now().Add(time.Hour))}
	api := &MockSharePointAPI{
		files:     map[string]string{"item-1": "About us content", "item-2": "Case study content"},
		fetchFail: map[string]bool{"item-2": true},
	}
	snippetRepo := &MockReplaceSnippetRepo{}
	svc := &service.SharePointService{IntegrationRepo: repo, SnippetRepo: snippetRepo, API: api}

	synced, err := svc.SyncFiles(1, []service.SyncFileRef{
		{ID: "item-1", Name: "About.docx"},
		{ID: "item-2", Name: "CaseStudy.docx"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synced != 1 {
		t.Fatalf("expected 1 file synced, got %d", synced)
	}

	if snippetRepo.source != model.SnippetSourceSharePoint {
		t.Errorf("expected sharepoint source, got %q", snippetRepo.source)
	}
	if len(snippetRepo.replaced) != 1 || snippetRepo.replaced[0].Title != "About.docx" {
		t.Errorf("unexpected snippets: %+v", snippetRepo.replaced)
	}
	if snippetRepo.replaced[0].Content != "About us content" {
		t.Errorf("unexpected content: %q", snippetRepo.replaced[0].Content)
	}
}

func TestCompleteConnectionStoresTokens(t *testing.T) {
	repo := &MockIntegrationRepo{}
	api := &MockSharePointAPI{}
	svc := &service.SharePointService{IntegrationRepo: repo, API: api}

	integration, err := svc.CompleteConnection(1, "the-code", "site-1", "drive-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if integration.Status != model.IntegrationStatusConnected {
		t.Errorf("expected connected, got %s", integration.Status)
	}
	if integration.AccessToken != "access-the-code" || integration.RefreshToken != "refresh-the-code" {
		t.Errorf("unexpected tokens: %q / %q", integration.AccessToken, integration.RefreshToken)
	}
	if integration.SiteID != "site-1" || integration.DriveID != "drive-1" {
		t.Errorf("unexpected site/drive: %q / %q", integration.SiteID, integration.DriveID)
	}
}
