// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrPostNotFound is a sentinel error
type ErrPostNotFound struct {
	PostID int
}

func (e *ErrPostNotFound) Error() string {
	return fmt.Sprintf("post with ID %d not found", e.PostID)
}

func NewPostNotFound(id int) error {
	return &ErrPostNotFound{PostID: id}
}

// ErrIntegrationNotFound is a sentinel error
type ErrIntegrationNotFound struct {
	SpaceID  int
	Provider string
}

func (e *ErrIntegrationNotFound) Error() string {
	return fmt.Sprintf("no %s integration for space %d", e.Provider, e.SpaceID)
}

func NewIntegrationNotFound(spaceID int, provider string) error {
	return &ErrIntegrationNotFound{SpaceID: spaceID, Provider: provider}
}

// ErrSyncJobNotFound is a sentinel error
type ErrSyncJobNotFound struct {
	RunID string
}

func (e *ErrSyncJobNotFound) Error() string {
	return fmt.Sprintf("no sync job for run %s", e.RunID)
}

func NewSyncRunNotFound(runID string) error {
	return &ErrSyncJobNotFound{RunID: runID}
}
