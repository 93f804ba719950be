package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type PostImageRepositoryInterface interface {
	Create(img *model.PostImage) error
	GetByID(id int) (*model.PostImage, error)
	ListByPost(postID int) ([]model.PostImage, error)
	ListByIDs(ids []int) ([]model.PostImage, error)
	UpdatePrompt(id int, prompt string) error
	UpdateStorage(id int, storagePath, publicURL string) error
	SetPrimary(postID, imageID int) error
}

type PostImageRepository struct {
	DB *sql.DB
}

const postImageColumns = `id, post_id, storage_path, public_url, is_primary, prompt_used, status, created_at, updated_at`

func (r *PostImageRepository) Create(img *model.PostImage) error {
	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now
	if img.Status == "" {
		img.Status = model.ImageStatusPending
	}
	query := `
        INSERT INTO post_images (post_id, storage_path, public_url, is_primary, prompt_used, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		img.PostID, img.StoragePath, img.PublicURL, img.IsPrimary,
		img.PromptUsed, img.Status, img.CreatedAt, img.UpdatedAt,
	).Scan(&img.ID)
}

func (r *PostImageRepository) GetByID(id int) (*model.PostImage, error) {
	query := `SELECT ` + postImageColumns + ` FROM post_images WHERE id=$1`
	var img model.PostImage
	err := r.DB.QueryRow(query, id).Scan(
		&img.ID, &img.PostID, &img.StoragePath, &img.PublicURL,
		&img.IsPrimary, &img.PromptUsed, &img.Status, &img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *PostImageRepository) ListByPost(postID int) ([]model.PostImage, error) {
	query := `SELECT ` + postImageColumns + ` FROM post_images WHERE post_id=$1 ORDER BY id ASC`
	return r.queryImages(query, postID)
}

func (r *PostImageRepository) ListByIDs(ids []int) ([]model.PostImage, error) {
	query := `SELECT ` + postImageColumns + ` FROM post_images WHERE id = ANY($1) ORDER BY id ASC`
	return r.queryImages(query, pq.Array(ids))
}

func (r *PostImageRepository) queryImages(query string, args ...interface{}) ([]model.PostImage, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []model.PostImage{}
	for rows.Next() {
		var img model.PostImage
		if err := rows.Scan(
			&img.ID, &img.PostID, &img.StoragePath, &img.PublicURL,
			&img.IsPrimary, &img.PromptUsed, &img.Status, &img.CreatedAt, &img.UpdatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *PostImageRepository) UpdatePrompt(id int, prompt string) error {
	query := `UPDATE post_images SET prompt_used=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, prompt, id)
	return err
}

func (r *PostImageRepository) UpdateStorage(id int, storagePath, publicURL string) error {
	query := `UPDATE post_images SET storage_path=$1, public_url=$2, status=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.DB.Exec(query, storagePath, publicURL, model.ImageStatusGenerated, id)
	return err
}

// SetPrimary marks one image primary and clears the flag on its siblings.
func (r *PostImageRepository) SetPrimary(postID, imageID int) error {
	if _, err := r.DB.Exec(`UPDATE post_images SET is_primary=false WHERE post_id=$1`, postID); err != nil {
		return err
	}
	_, err := r.DB.Exec(`UPDATE post_images SET is_primary=true, updated_at=NOW() WHERE id=$1 AND post_id=$2`, imageID, postID)
	return err
}

var _ PostImageRepositoryInterface = (*PostImageRepository)(nil)
