// internal/model/opportunity.go
package model

import "time"

// Opportunity statuses and sources
const (
	OpportunityStatusOpen     = "open"
	OpportunityStatusClosed   = "closed"
	OpportunityStatusArchived = "archived"

	OpportunitySourceCSV     = "csv"
	OpportunitySourceScraper = "scraper"
)

type Opportunity struct {
	ID          int        `db:"id" json:"id"`
	SpaceID     int        `db:"space_id" json:"space_id"`
	ExternalID  string     `db:"external_id" json:"external_id"`
	Title       string     `db:"title" json:"title"`
	BuyerEntity string     `db:"buyer_entity" json:"buyer_entity"`
	Department  string     `db:"department" json:"department"`
	Category    string     `db:"category" json:"category"`
	ValueBand   string     `db:"value_band" json:"value_band"`
	CloseDate   *time.Time `db:"close_date" json:"close_date,omitempty"`
	Status      string     `db:"status" json:"status"`
	Source      string     `db:"source" json:"source"`
	URL         string     `db:"url" json:"url"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
