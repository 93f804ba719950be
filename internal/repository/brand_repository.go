package repository

import (
	"database/sql"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type BrandRepositoryInterface interface {
	GetBySpace(spaceID int) (*model.BrandProfile, error)
	Upsert(bp *model.BrandProfile) error
}

type BrandRepository struct {
	DB *sql.DB
}

// GetBySpace returns nil when the space has no brand profile yet.
func (r *BrandRepository) GetBySpace(spaceID int) (*model.BrandProfile, error) {
	query := `
        SELECT id, space_id, who_we_are, tone_notes, audience, logo_url, logo_position, created_at, updated_at
        FROM brand_profiles WHERE space_id=$1
    `
	var bp model.BrandProfile
	err := r.DB.QueryRow(query, spaceID).Scan(
		&bp.ID, &bp.SpaceID, &bp.WhoWeAre, &bp.ToneNotes, &bp.Audience,
		&bp.LogoURL, &bp.LogoPosition, &bp.CreatedAt, &bp.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &bp, nil
}

func (r *BrandRepository) Upsert(bp *model.BrandProfile) error {
	query := `
        INSERT INTO brand_profiles (space_id, who_we_are, tone_notes, audience, logo_url, logo_position, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (space_id) DO UPDATE
        SET who_we_are=EXCLUDED.who_we_are, tone_notes=EXCLUDED.tone_notes, audience=EXCLUDED.audience,
            logo_url=EXCLUDED.logo_url, logo_position=EXCLUDED.logo_position, updated_at=NOW()
        RETURNING id
    `
	return r.DB.QueryRow(query,
		bp.SpaceID, bp.WhoWeAre, bp.ToneNotes, bp.Audience, bp.LogoURL, bp.LogoPosition,
	).Scan(&bp.ID)
}

var _ BrandRepositoryInterface = (*BrandRepository)(nil)
