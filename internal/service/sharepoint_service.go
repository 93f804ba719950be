// internal/service/sharepoint_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/spaceshq/spaces-backend/internal/clients"
	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

// tokenExpirySkew refreshes slightly early so a token never dies mid-request.
const tokenExpirySkew = 2 * time.Minute

// SharePointAPI is the slice of the Microsoft client the service needs.
type SharePointAPI interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	ListChildren(ctx context.Context, accessToken, driveID, folder string) ([]clients.DriveItem, error)
	FetchFileContent(ctx context.Context, accessToken, driveID, itemID string) ([]byte, error)
}

type SharePointService struct {
	IntegrationRepo repository.IntegrationRepositoryInterface
	SnippetRepo     repository.SnippetRepositoryInterface
	API             SharePointAPI
}

// ConnectURL returns the Microsoft authorize URL for a space. The space id
// rides in the OAuth state parameter.
func (s *SharePointService) ConnectURL(spaceID int) string {
	return s.API.AuthURL(fmt.Sprintf("space:%d", spaceID))
}

// CompleteConnection exchanges the authorization code and stores the tokens.
func (s *SharePointService) CompleteConnection(spaceID int, code, siteID, driveID string) (*model.Integration, error) {
	tok, err := s.API.Exchange(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	integration := &model.Integration{
		SpaceID:      spaceID,
		Provider:     "sharepoint",
		Status:       model.IntegrationStatusConnected,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		SiteID:       siteID,
		DriveID:      driveID,
	}
	if err := s.IntegrationRepo.Upsert(integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// EnsureToken returns the space's integration with a usable access token,
// refreshing when it is near expiry. A failed refresh marks the connection
// expired and is not retried; the user has to reconnect.
func (s *SharePointService) EnsureToken(spaceID int) (*model.Integration, error) {
	integration, err := s.IntegrationRepo.GetBySpaceAndProvider(spaceID, "sharepoint")
	if err != nil {
		return nil, err
	}
	if integration.Status != model.IntegrationStatusConnected {
		return nil, fmt.Errorf("sharepoint connection for space %d is %s", spaceID, integration.Status)
	}

	if time.Until(integration.ExpiresAt) > tokenExpirySkew {
		return integration, nil
	}

	tok, err := s.API.Refresh(context.Background(), integration.RefreshToken)
	if err != nil {
		slog.Warn("[SharePointService] Token refresh failed, marking connection expired",
			slog.Int("space_id", spaceID), slog.Any("error", err))
		if updateErr := s.IntegrationRepo.UpdateStatus(integration.ID, model.IntegrationStatusExpired); updateErr != nil {
			slog.Warn("[SharePointService] Failed to mark integration expired", slog.Any("error", updateErr))
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = integration.RefreshToken
	}
	if err := s.IntegrationRepo.UpdateTokens(integration.ID, tok.AccessToken, refreshToken, tok.Expiry); err != nil {
		return nil, err
	}

	integration.AccessToken = tok.AccessToken
	integration.RefreshToken = refreshToken
	integration.ExpiresAt = tok.Expiry
	return integration, nil
}

// Browse lists the children of a folder in the connected drive.
func (s *SharePointService) Browse(spaceID int, folder string) ([]clients.DriveItem, error) {
	integration, err := s.EnsureToken(spaceID)
	if err != nil {
		return nil, err
	}
	return s.API.ListChildren(context.Background(), integration.AccessToken, integration.DriveID, folder)
}

// SyncFileRef identifies a drive item selected for syncing.
type SyncFileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SyncFiles pulls the content of the selected files and replaces the space's
// SharePoint snippet set. Per-file failures are logged and skipped.
func (s *SharePointService) SyncFiles(spaceID int, files []SyncFileRef) (int, error) {
	integration, err := s.EnsureToken(spaceID)
	if err != nil {
		return 0, err
	}

	snippets := []model.ContentSnippet{}
	for _, f := range files {
		content, err := s.API.FetchFileContent(context.Background(), integration.AccessToken, integration.DriveID, f.ID)
		if err != nil {
			slog.Warn("[SharePointService] Failed to fetch file",
				slog.String("item_id", f.ID), slog.Any("error", err))
			continue
		}
		snippets = append(snippets, model.ContentSnippet{
			Title:   f.Name,
			Content: capText(string(content), contextSourceCap),
		})
	}

	if err := s.SnippetRepo.ReplaceForSource(spaceID, model.SnippetSourceSharePoint, snippets); err != nil {
		return 0, err
	}
	return len(snippets), nil
}
