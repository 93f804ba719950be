package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
	"github.com/spaceshq/spaces-backend/internal/model"
)

type PostRepositoryInterface interface {
	Create(p *model.Post) error
	GetByID(id int) (*model.Post, error)
	ListByCampaign(campaignID int) ([]model.Post, error)
	RecentBodies(campaignID, limit int) ([]string, error)
	UpdateStatus(id int, status string) error
	UpdateImageStatus(id int, imageStatus string) error
	UpdateOverlayStatus(id int, overlayStatus string) error
	Delete(id int) error
	CampaignStats(campaignID int) (map[string]int, error)
}

type PostRepository struct {
	DB *sql.DB
}

func (r *PostRepository) Create(p *model.Post) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.PostStatusDraft
	}
	if p.ImageStatus == "" {
		p.ImageStatus = "none"
	}
	if p.OverlayStatus == "" {
		p.OverlayStatus = "none"
	}

	query := `
        INSERT INTO posts (campaign_id, topic, body, status, sequence, image_status, overlay_status, last_error, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		p.CampaignID, p.Topic, p.Body, p.Status, p.Sequence,
		p.ImageStatus, p.OverlayStatus, p.LastError, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *PostRepository) GetByID(id int) (*model.Post, error) {
	query := `
        SELECT id, campaign_id, topic, body, status, sequence, image_status, overlay_status, last_error, created_at, updated_at
        FROM posts WHERE id=$1
    `
	var p model.Post
	err := r.DB.QueryRow(query, id).Scan(
		&p.ID, &p.CampaignID, &p.Topic, &p.Body, &p.Status, &p.Sequence,
		&p.ImageStatus, &p.OverlayStatus, &p.LastError, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewPostNotFound(id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) ListByCampaign(campaignID int) ([]model.Post, error) {
	query := `
        SELECT id, campaign_id, topic, body, status, sequence, image_status, overlay_status, last_error, created_at, updated_at
        FROM posts WHERE campaign_id=$1 ORDER BY sequence ASC
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.CampaignID, &p.Topic, &p.Body, &p.Status, &p.Sequence,
			&p.ImageStatus, &p.OverlayStatus, &p.LastError, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// RecentBodies returns the bodies of the most recently created posts,
// newest first. Used as the diversity window during generation.
func (r *PostRepository) RecentBodies(campaignID, limit int) ([]string, error) {
	query := `SELECT body FROM posts WHERE campaign_id=$1 ORDER BY id DESC LIMIT $2`
	rows, err := r.DB.Query(query, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bodies := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func (r *PostRepository) UpdateStatus(id int, status string) error {
	query := `UPDATE posts SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *PostRepository) UpdateImageStatus(id int, imageStatus string) error {
	query := `UPDATE posts SET image_status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, imageStatus, id)
	return err
}

func (r *PostRepository) UpdateOverlayStatus(id int, overlayStatus string) error {
	query := `UPDATE posts SET overlay_status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, overlayStatus, id)
	return err
}

func (r *PostRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM posts WHERE id=$1`, id)
	return err
}

func (r *PostRepository) CampaignStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM posts WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"draft": 0, "ready": 0, "scheduled": 0, "published": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, nil
}

var _ PostRepositoryInterface = (*PostRepository)(nil)
