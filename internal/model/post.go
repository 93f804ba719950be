// internal/model/post.go
package model

import "time"

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusReady     = "ready"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

type Post struct {
	ID            int       `db:"id" json:"id"`
	CampaignID    int       `db:"campaign_id" json:"campaign_id"`
	Topic         string    `db:"topic" json:"topic"`
	Body          string    `db:"body" json:"body"`
	Status        string    `db:"status" json:"status"`
	Sequence      int       `db:"sequence" json:"sequence"`
	ImageStatus   string    `db:"image_status" json:"image_status"`     // none, pending, generated, failed
	OverlayStatus string    `db:"overlay_status" json:"overlay_status"` // none, applied, failed
	LastError     string    `db:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
