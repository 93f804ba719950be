// internal/model/brand_profile.go
package model

import "time"

type BrandProfile struct {
	ID           int        `db:"id" json:"id"`
	SpaceID      int        `db:"space_id" json:"space_id"`
	WhoWeAre     string     `db:"who_we_are" json:"who_we_are"`
	ToneNotes    string     `db:"tone_notes" json:"tone_notes"`
	Audience     string     `db:"audience" json:"audience"`
	LogoURL      string     `db:"logo_url" json:"logo_url"`
	LogoPosition string     `db:"logo_position" json:"logo_position"` // bottom-right, bottom-left, top-right, top-left
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
