// internal/model/space.go
package model

import "time"

type Space struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Website   string    `db:"website" json:"website"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
