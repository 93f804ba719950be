// internal/model/organisation.go
package model

import "time"

type Organisation struct {
	ID        int       `db:"id" json:"id"`
	SpaceID   int       `db:"space_id" json:"space_id"`
	Name      string    `db:"name" json:"name"`
	Acronym   string    `db:"acronym" json:"acronym"`
	Portfolio string    `db:"portfolio" json:"portfolio"`
	Website   string    `db:"website" json:"website"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
