package repository

import (
	"database/sql"

	"github.com/spaceshq/spaces-backend/internal/model"
)

type DepartmentMappingRepositoryInterface interface {
	Create(m *model.DepartmentMapping) error
	ListBySpace(spaceID int) ([]model.DepartmentMapping, error)
	Delete(id int) error
}

type DepartmentMappingRepository struct {
	DB *sql.DB
}

func (r *DepartmentMappingRepository) Create(m *model.DepartmentMapping) error {
	query := `
        INSERT INTO department_mappings (space_id, pattern, match_type, department, priority, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id
    `
	return r.DB.QueryRow(query, m.SpaceID, m.Pattern, m.MatchType, m.Department, m.Priority).Scan(&m.ID)
}

// ListBySpace returns mappings ordered by priority, highest first, so callers
// can take the first match when resolving a buyer entity.
func (r *DepartmentMappingRepository) ListBySpace(spaceID int) ([]model.DepartmentMapping, error) {
	query := `
        SELECT id, space_id, pattern, match_type, department, priority, created_at
        FROM department_mappings WHERE space_id=$1 ORDER BY priority DESC, id ASC
    `
	rows, err := r.DB.Query(query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := []model.DepartmentMapping{}
	for rows.Next() {
		var m model.DepartmentMapping
		if err := rows.Scan(&m.ID, &m.SpaceID, &m.Pattern, &m.MatchType, &m.Department, &m.Priority, &m.CreatedAt); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (r *DepartmentMappingRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM department_mappings WHERE id=$1`, id)
	return err
}

var _ DepartmentMappingRepositoryInterface = (*DepartmentMappingRepository)(nil)
