// internal/model/post_image.go
package model

import "time"

// PostImage statuses
const (
	ImageStatusPending   = "pending"
	ImageStatusGenerated = "generated"
	ImageStatusFailed    = "failed"
)

type PostImage struct {
	ID          int       `db:"id" json:"id"`
	PostID      int       `db:"post_id" json:"post_id"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	PublicURL   string    `db:"public_url" json:"public_url"`
	IsPrimary   bool      `db:"is_primary" json:"is_primary"`
	PromptUsed  string    `db:"prompt_used" json:"prompt_used"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
