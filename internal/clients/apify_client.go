package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

const apifyRequestTimeout = 30 * time.Second

var (
	apifyClientInstance *ApifyClient
	apifyOnce           sync.Once
)

// ApifyClient drives scraper actor runs on the Apify control plane.
type ApifyClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func GetApifyClient() *ApifyClient {
	apifyOnce.Do(func() {
		baseURL := os.Getenv("APIFY_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.apify.com"
		}
		apifyClientInstance = &ApifyClient{
			BaseURL: baseURL,
			Token:   os.Getenv("APIFY_TOKEN"),
			Client:  &http.Client{Timeout: apifyRequestTimeout},
		}
	})
	return apifyClientInstance
}

type ActorRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"` // READY, RUNNING, SUCCEEDED, FAILED, ABORTED
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type actorRunEnvelope struct {
	Data ActorRun `json:"data"`
}

// StartRun kicks off an actor with the given input and returns the run handle.
func (ac *ApifyClient) StartRun(actorID string, input any) (*ActorRun, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", ac.BaseURL, actorID, ac.Token)
	resp, err := ac.Client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[ApifyClient] start run failed with status %d", resp.StatusCode)
	}

	var envelope actorRunEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	slog.Info("[ApifyClient] Actor run started",
		slog.String("actor", actorID), slog.String("run_id", envelope.Data.ID))
	return &envelope.Data, nil
}

// GetRun fetches the current status of a run.
func (ac *ApifyClient) GetRun(runID string) (*ActorRun, error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", ac.BaseURL, runID, ac.Token)
	resp, err := ac.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[ApifyClient] get run failed with status %d", resp.StatusCode)
	}

	var envelope actorRunEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// FetchDatasetItems downloads the result items of a finished run.
func (ac *ApifyClient) FetchDatasetItems(datasetID string) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s", ac.BaseURL, datasetID, ac.Token)
	resp, err := ac.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[ApifyClient] fetch dataset failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
