// internal/model/integration.go
package model

import "time"

// Integration statuses
const (
	IntegrationStatusConnected    = "connected"
	IntegrationStatusExpired      = "expired"
	IntegrationStatusDisconnected = "disconnected"
)

type Integration struct {
	ID           int        `db:"id" json:"id"`
	SpaceID      int        `db:"space_id" json:"space_id"`
	Provider     string     `db:"provider" json:"provider"` // sharepoint
	Status       string     `db:"status" json:"status"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken string     `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	SiteID       string     `db:"site_id" json:"site_id"`
	DriveID      string     `db:"drive_id" json:"drive_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
