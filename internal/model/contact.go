// internal/model/contact.go
package model

type Contact struct {
	ID             int    `db:"id" json:"id"`
	OrganisationID int    `db:"organisation_id" json:"organisation_id"`
	Name           string `db:"name" json:"name"`
	Role           string `db:"role" json:"role"`
	Email          string `db:"email" json:"email"`
	Phone          string `db:"phone" json:"phone"`
}
