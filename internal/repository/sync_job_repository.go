package repository

import (
	"database/sql"
	"time"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type SyncJobRepositoryInterface interface {
	Create(j *model.SyncJob) error
	GetByID(id int) (*model.SyncJob, error)
	GetByRunID(runID string) (*model.SyncJob, error)
	UpdateRun(id int, runID, status string) error
	MarkCompleted(id, itemsTotal, itemsImported int) error
	MarkFailed(id int, lastError string) error
}

type SyncJobRepository struct {
	DB *sql.DB
}

const syncJobColumns = `id, space_id, kind, run_id, status, items_total, items_imported, last_error, created_at, updated_at`

func (r *SyncJobRepository) Create(j *model.SyncJob) error {
	j.CreatedAt = time.Now()
	if j.Status == "" {
		j.Status = model.SyncStatusQueued
	}
	query := `
        INSERT INTO sync_jobs (space_id, kind, run_id, status, items_total, items_imported, last_error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		j.SpaceID, j.Kind, j.RunID, j.Status, j.ItemsTotal, j.ItemsImported, j.LastError, j.CreatedAt,
	).Scan(&j.ID)
}

func (r *SyncJobRepository) GetByID(id int) (*model.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id=$1`
	return r.scanJob(r.DB.QueryRow(query, id))
}

func (r *SyncJobRepository) GetByRunID(runID string) (*model.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE run_id=$1 ORDER BY id DESC LIMIT 1`
	return r.scanJob(r.DB.QueryRow(query, runID))
}

func (r *SyncJobRepository) scanJob(row *sql.Row) (*model.SyncJob, error) {
	var j model.SyncJob
	err := row.Scan(
		&j.ID, &j.SpaceID, &j.Kind, &j.RunID, &j.Status,
		&j.ItemsTotal, &j.ItemsImported, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *SyncJobRepository) UpdateRun(id int, runID, status string) error {
	query := `UPDATE sync_jobs SET run_id=$1, status=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, runID, status, id)
	return err
}

func (r *SyncJobRepository) MarkCompleted(id, itemsTotal, itemsImported int) error {
	query := `
        UPDATE sync_jobs SET status=$1, items_total=$2, items_imported=$3, updated_at=NOW() WHERE id=$4
    `
	_, err := r.DB.Exec(query, model.SyncStatusCompleted, itemsTotal, itemsImported, id)
	return err
}

func (r *SyncJobRepository) MarkFailed(id int, lastError string) error {
	query := `UPDATE sync_jobs SET status=$1, last_error=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.SyncStatusFailed, lastError, id)
	return err
}

var _ SyncJobRepositoryInterface = (*SyncJobRepository)(nil)
