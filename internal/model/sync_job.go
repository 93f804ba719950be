// internal/model/sync_job.go
package model

import "time"

// SyncJob kinds and statuses
const (
	SyncKindBuyICT     = "buyict"
	SyncKindDirectory  = "agency_directory"
	SyncKindWebsite    = "website_crawl"
	SyncKindSharePoint = "sharepoint"

	SyncStatusQueued    = "queued"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

type SyncJob struct {
	ID           int        `db:"id" json:"id"`
	SpaceID      int        `db:"space_id" json:"space_id"`
	Kind         string     `db:"kind" json:"kind"`
	RunID        string     `db:"run_id" json:"run_id"`
	Status       string     `db:"status" json:"status"`
	ItemsTotal   int        `db:"items_total" json:"items_total"`
	ItemsImported int       `db:"items_imported" json:"items_imported"`
	LastError    string     `db:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
