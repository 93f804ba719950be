package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
	"github.com/spaceshq/spaces-backend/internal/model"
)

type IntegrationRepositoryInterface interface {
	GetBySpaceAndProvider(spaceID int, provider string) (*model.Integration, error)
	Upsert(i *model.Integration) error
	UpdateTokens(id int, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateStatus(id int, status string) error
}

type IntegrationRepository struct {
	DB *sql.DB
}

func (r *IntegrationRepository) GetBySpaceAndProvider(spaceID int, provider string) (*model.Integration, error) {
	query := `
        SELECT id, space_id, provider, status, access_token, refresh_token, expires_at, site_id, drive_id, created_at, updated_at
        FROM integrations WHERE space_id=$1 AND provider=$2
    `
	var i model.Integration
	err := r.DB.QueryRow(query, spaceID, provider).Scan(
		&i.ID, &i.SpaceID, &i.Provider, &i.Status,
		&i.AccessToken, &i.RefreshToken, &i.ExpiresAt,
		&i.SiteID, &i.DriveID, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewIntegrationNotFound(spaceID, provider)
		}
		return nil, err
	}
	return &i, nil
}

func (r *IntegrationRepository) Upsert(i *model.Integration) error {
	query := `
        INSERT INTO integrations (space_id, provider, status, access_token, refresh_token, expires_at, site_id, drive_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (space_id, provider) DO UPDATE
        SET status=EXCLUDED.status, access_token=EXCLUDED.access_token, refresh_token=EXCLUDED.refresh_token,
            expires_at=EXCLUDED.expires_at, site_id=EXCLUDED.site_id, drive_id=EXCLUDED.drive_id, updated_at=NOW()
        RETURNING id
    `
	return r.DB.QueryRow(query,
		i.SpaceID, i.Provider, i.Status, i.AccessToken, i.RefreshToken,
		i.ExpiresAt, i.SiteID, i.DriveID,
	).Scan(&i.ID)
}

func (r *IntegrationRepository) UpdateTokens(id int, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
        UPDATE integrations
        SET access_token=$1, refresh_token=$2, expires_at=$3, status=$4, updated_at=NOW()
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, accessToken, refreshToken, expiresAt, model.IntegrationStatusConnected, id)
	return err
}

func (r *IntegrationRepository) UpdateStatus(id int, status string) error {
	query := `UPDATE integrations SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

var _ IntegrationRepositoryInterface = (*IntegrationRepository)(nil)
