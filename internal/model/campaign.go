// internal/model/campaign.go
package model

import (
	"time"

	"github.com/lib/pq"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusRunning   = "running"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

type Campaign struct {
	ID             int            `db:"id" json:"id"`
	SpaceID        int            `db:"space_id" json:"space_id"`
	Name           string         `db:"name" json:"name"`
	Status         string         `db:"status" json:"status"`
	PostCount      int            `db:"post_count" json:"post_count"`
	UseWebsite     bool           `db:"use_website" json:"use_website"`
	UseManual      bool           `db:"use_manual" json:"use_manual"`
	UseSharePoint  bool           `db:"use_sharepoint" json:"use_sharepoint"`
	Tone           string         `db:"tone" json:"tone"`
	Audience       string         `db:"audience" json:"audience"`
	Length         string         `db:"length" json:"length"` // short, medium, long
	UseHashtags    bool           `db:"use_hashtags" json:"use_hashtags"`
	UseEmojis      bool           `db:"use_emojis" json:"use_emojis"`
	UseCTA         bool           `db:"use_cta" json:"use_cta"`
	Topics         pq.StringArray `db:"topics" json:"topics"`
	GeneratedIdeas pq.StringArray `db:"generated_ideas" json:"generated_ideas"`
	PromptTemplate string         `db:"prompt_template" json:"prompt_template"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
