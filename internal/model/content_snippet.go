// internal/model/content_snippet.go
package model

import "time"

// Snippet sources
const (
	SnippetSourceWebsite    = "website"
	SnippetSourceSharePoint = "sharepoint"
)

type ContentSnippet struct {
	ID        int       `db:"id" json:"id"`
	SpaceID   int       `db:"space_id" json:"space_id"`
	Source    string    `db:"source" json:"source"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
