package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	graphBaseURL        = "https://graph.microsoft.com/v1.0"
	graphRequestTimeout = 30 * time.Second
)

var (
	sharePointClientInstance *SharePointClient
	sharePointOnce           sync.Once
)

// SharePointClient handles the Microsoft identity OAuth flow and Graph drive
// access for SharePoint document libraries.
type SharePointClient struct {
	Config *oauth2.Config
	Client *http.Client
}

func GetSharePointClient() *SharePointClient {
	sharePointOnce.Do(func() {
		tenant := os.Getenv("MS_TENANT_ID")
		if tenant == "" {
			tenant = "common"
		}
		sharePointClientInstance = &SharePointClient{
			Config: &oauth2.Config{
				ClientID:     os.Getenv("MS_CLIENT_ID"),
				ClientSecret: os.Getenv("MS_CLIENT_SECRET"),
				RedirectURL:  os.Getenv("MS_REDIRECT_URL"),
				Endpoint:     microsoft.AzureADEndpoint(tenant),
				Scopes:       []string{"offline_access", "Files.Read.All", "Sites.Read.All"},
			},
			Client: &http.Client{Timeout: graphRequestTimeout},
		}
	})
	return sharePointClientInstance
}

// AuthURL builds the authorization-code URL the browser is redirected to.
func (sp *SharePointClient) AuthURL(state string) string {
	return sp.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens.
func (sp *SharePointClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return sp.Config.Exchange(ctx, code)
}

// Refresh renews an access token from a refresh token. A failure here is
// surfaced to the caller; the integration record is marked expired upstream.
func (sp *SharePointClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := sp.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

type DriveItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsFolder bool   `json:"is_folder"`
	Size     int64  `json:"size"`
	WebURL   string `json:"web_url"`
}

type graphDriveItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Size   int64           `json:"size"`
	WebURL string          `json:"webUrl"`
	Folder json.RawMessage `json:"folder"`
}

type graphChildrenResponse struct {
	Value []graphDriveItem `json:"value"`
}

// ListChildren lists the items under a drive folder. An empty folder path
// lists the drive root.
func (sp *SharePointClient) ListChildren(ctx context.Context, accessToken, driveID, folder string) ([]DriveItem, error) {
	endpoint := fmt.Sprintf("%s/drives/%s/root/children", graphBaseURL, driveID)
	if folder != "" {
		endpoint = fmt.Sprintf("%s/drives/%s/root:/%s:/children", graphBaseURL, driveID, url.PathEscape(folder))
	}

	raw, err := sp.graphGet(ctx, accessToken, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed graphChildrenResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	items := make([]DriveItem, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		items = append(items, DriveItem{
			ID:       v.ID,
			Name:     v.Name,
			IsFolder: len(v.Folder) > 0,
			Size:     v.Size,
			WebURL:   v.WebURL,
		})
	}
	return items, nil
}

// FetchFileContent downloads a drive item's content.
func (sp *SharePointClient) FetchFileContent(ctx context.Context, accessToken, driveID, itemID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/drives/%s/items/%s/content", graphBaseURL, driveID, itemID)
	return sp.graphGet(ctx, accessToken, endpoint)
}

func (sp *SharePointClient) graphGet(ctx context.Context, accessToken, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := sp.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[SharePointClient] graph request failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
