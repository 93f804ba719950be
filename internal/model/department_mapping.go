// internal/model/department_mapping.go
package model

import "time"

// Department-mapping match types
const (
	MatchTypeExact    = "exact"
	MatchTypeContains = "contains"
	MatchTypeRegex    = "regex"
	MatchTypeFuzzy    = "fuzzy"
)

type DepartmentMapping struct {
	ID         int       `db:"id" json:"id"`
	SpaceID    int       `db:"space_id" json:"space_id"`
	Pattern    string    `db:"pattern" json:"pattern"`
	MatchType  string    `db:"match_type" json:"match_type"`
	Department string    `db:"department" json:"department"`
	Priority   int       `db:"priority" json:"priority"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
