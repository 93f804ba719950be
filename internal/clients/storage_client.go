package clients

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
)

const storageRequestTimeout = 30 * time.Second

var (
	storageClientInstance *StorageClient
	storageOnce           sync.Once
)

// StorageClient uploads objects to the hosted storage bucket and resolves
// their public URLs.
type StorageClient struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Client     *http.Client
}

func GetStorageClient() *StorageClient {
	storageOnce.Do(func() {
		bucket := os.Getenv("STORAGE_BUCKET")
		if bucket == "" {
			bucket = "post-images"
		}
		storageClientInstance = &StorageClient{
			BaseURL:    os.Getenv("STORAGE_URL"),
			ServiceKey: os.Getenv("STORAGE_SERVICE_KEY"),
			Bucket:     bucket,
			Client:     &http.Client{Timeout: storageRequestTimeout},
		}
	})
	return storageClientInstance
}

// Upload writes an object and returns its public URL. Existing objects at the
// same path are overwritten.
func (sc *StorageClient) Upload(path, contentType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", sc.BaseURL, sc.Bucket, path)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+sc.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := sc.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("[StorageClient] upload failed with status %d", resp.StatusCode)
	}
	return sc.PublicURL(path), nil
}

func (sc *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", sc.BaseURL, sc.Bucket, path)
}
