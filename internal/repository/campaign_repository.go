package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
	"github.com/spaceshq/spaces-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	ListCampaigns(spaceID, offset, limit int, status string) ([]*model.Campaign, int, error)
	GetByID(id int) (*model.Campaign, error)
	Create(c *model.Campaign) error
	Update(c *model.Campaign) error
	UpdateStatus(campaignID int, status string) error
	UpdateGeneratedIdeas(campaignID int, ideas []string) error
	Delete(id int) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, space_id, name, status, post_count, use_website, use_manual, use_sharepoint,
        tone, audience, length, use_hashtags, use_emojis, use_cta, topics, generated_ideas,
        prompt_template, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.SpaceID, &c.Name, &c.Status, &c.PostCount,
		&c.UseWebsite, &c.UseManual, &c.UseSharePoint,
		&c.Tone, &c.Audience, &c.Length,
		&c.UseHashtags, &c.UseEmojis, &c.UseCTA,
		&c.Topics, &c.GeneratedIdeas, &c.PromptTemplate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO campaigns (space_id, name, status, post_count, use_website, use_manual, use_sharepoint,
            tone, audience, length, use_hashtags, use_emojis, use_cta, topics, generated_ideas,
            prompt_template, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.SpaceID, c.Name, c.Status, c.PostCount,
		c.UseWebsite, c.UseManual, c.UseSharePoint,
		c.Tone, c.Audience, c.Length,
		c.UseHashtags, c.UseEmojis, c.UseCTA,
		c.Topics, c.GeneratedIdeas, c.PromptTemplate, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET name=$1, post_count=$2, use_website=$3, use_manual=$4, use_sharepoint=$5,
            tone=$6, audience=$7, length=$8, use_hashtags=$9, use_emojis=$10, use_cta=$11,
            topics=$12, prompt_template=$13, updated_at=NOW()
        WHERE id=$14
    `
	_, err := r.DB.Exec(query,
		c.Name, c.PostCount, c.UseWebsite, c.UseManual, c.UseSharePoint,
		c.Tone, c.Audience, c.Length, c.UseHashtags, c.UseEmojis, c.UseCTA,
		c.Topics, c.PromptTemplate, c.ID,
	)
	return err
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) UpdateGeneratedIdeas(campaignID int, ideas []string) error {
	query := `UPDATE campaigns SET generated_ideas=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, pq.Array(ideas), campaignID)
	return err
}

// Delete removes the campaign; posts and images follow via ON DELETE CASCADE.
func (r *CampaignRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(spaceID, offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE space_id=$1`
	args := []interface{}{spaceID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE space_id=$1`
	argsCount := []interface{}{spaceID}
	if status != "" {
		countQuery += " AND status=$2"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
