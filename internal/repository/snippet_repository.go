package repository

import (
	"database/sql"
	"time"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type SnippetRepositoryInterface interface {
	ListBySource(spaceID int, source string, limit int) ([]model.ContentSnippet, error)
	ReplaceForSource(spaceID int, source string, snippets []model.ContentSnippet) error
}

type SnippetRepository struct {
	DB *sql.DB
}

func (r *SnippetRepository) ListBySource(spaceID int, source string, limit int) ([]model.ContentSnippet, error) {
	query := `
        SELECT id, space_id, source, title, content, created_at
        FROM content_snippets
        WHERE space_id=$1 AND source=$2
        ORDER BY id ASC LIMIT $3
    `
	rows, err := r.DB.Query(query, spaceID, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snippets := []model.ContentSnippet{}
	for rows.Next() {
		var s model.ContentSnippet
		if err := rows.Scan(&s.ID, &s.SpaceID, &s.Source, &s.Title, &s.Content, &s.CreatedAt); err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	return snippets, nil
}

// ReplaceForSource swaps the whole snippet set for a source in one transaction,
// so a re-sync never leaves a partial mix of old and new snippets.
func (r *SnippetRepository) ReplaceForSource(spaceID int, source string, snippets []model.ContentSnippet) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM content_snippets WHERE space_id=$1 AND source=$2`, spaceID, source); err != nil {
		tx.Rollback()
		return err
	}

	query := `
        INSERT INTO content_snippets (space_id, source, title, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	now := time.Now()
	for _, s := range snippets {
		if _, err := tx.Exec(query, spaceID, source, s.Title, s.Content, now); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

var _ SnippetRepositoryInterface = (*SnippetRepository)(nil)
