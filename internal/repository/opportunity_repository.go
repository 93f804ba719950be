package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type OpportunityRepositoryInterface interface {
	ListOpportunities(spaceID, offset, limit int, status, department string) ([]*model.Opportunity, int, error)
	GetByID(id int) (*model.Opportunity, error)
	UpsertByExternalID(o *model.Opportunity) (bool, error)
	UpdateStatus(id int, status string) error
	Delete(id int) error
}

type OpportunityRepository struct {
	DB *sql.DB
}

const opportunityColumns = `id, space_id, external_id, title, buyer_entity, department, category,
        value_band, close_date, status, source, url, created_at, updated_at`

// UpsertByExternalID inserts or refreshes an opportunity keyed by its source
// listing id. Returns true when a new row was created.
func (r *OpportunityRepository) UpsertByExternalID(o *model.Opportunity) (bool, error) {
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = model.OpportunityStatusOpen
	}
	query := `
        INSERT INTO opportunities (space_id, external_id, title, buyer_entity, department, category,
            value_band, close_date, status, source, url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (space_id, external_id) DO UPDATE
        SET title=EXCLUDED.title, buyer_entity=EXCLUDED.buyer_entity, department=EXCLUDED.department,
            category=EXCLUDED.category, value_band=EXCLUDED.value_band, close_date=EXCLUDED.close_date,
            url=EXCLUDED.url, updated_at=NOW()
        RETURNING id, (xmax = 0)
    `
	var created bool
	err := r.DB.QueryRow(query,
		o.SpaceID, o.ExternalID, o.Title, o.BuyerEntity, o.Department, o.Category,
		o.ValueBand, o.CloseDate, o.Status, o.Source, o.URL, o.CreatedAt,
	).Scan(&o.ID, &created)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *OpportunityRepository) GetByID(id int) (*model.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id=$1`
	var o model.Opportunity
	err := r.DB.QueryRow(query, id).Scan(
		&o.ID, &o.SpaceID, &o.ExternalID, &o.Title, &o.BuyerEntity, &o.Department,
		&o.Category, &o.ValueBand, &o.CloseDate, &o.Status, &o.Source, &o.URL,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OpportunityRepository) ListOpportunities(spaceID, offset, limit int, status, department string) ([]*model.Opportunity, int, error) {
	opportunities := []*model.Opportunity{}
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE space_id=$1`
	args := []interface{}{spaceID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	if department != "" {
		query += fmt.Sprintf(" AND department=$%d", argPos)
		args = append(args, department)
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
		o := &model.Opportunity{}
		if err := rows.Scan(
			&o.ID, &o.SpaceID, &o.ExternalID, &o.Title, &o.BuyerEntity, &o.Department,
			&o.Category, &o.ValueBand, &o.CloseDate, &o.Status, &o.Source, &o.URL,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		opportunities = append(opportunities, o)
	}

	countQuery := `SELECT COUNT(*) FROM opportunities WHERE space_id=$1`
	argsCount := []interface{}{spaceID}
	argPosCount := 2
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
		argPosCount++
	}
	if department != "" {
		countQuery += fmt.Sprintf(" AND department=$%d", argPosCount)
		argsCount = append(argsCount, department)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return opportunities, total, nil
}

func (r *OpportunityRepository) UpdateStatus(id int, status string) error {
	query := `UPDATE opportunities SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *OpportunityRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM opportunities WHERE id=$1`, id)
	return err
}

var _ OpportunityRepositoryInterface = (*OpportunityRepository)(nil)
