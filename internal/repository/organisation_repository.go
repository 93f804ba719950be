package repository

import (
	"database/sql"

	"github.com/spaceshq/spaces-backend/internal/model"
)

// OrganisationRepositoryInterface covers the agency directory and its contacts
type OrganisationRepositoryInterface interface {
	UpsertByName(o *model.Organisation) error
	ListBySpace(spaceID int) ([]model.Organisation, error)
	GetByID(id int) (*model.Organisation, error)
	CreateContact(c *model.Contact) error
	ListContacts(organisationID int) ([]model.Contact, error)
}

type OrganisationRepository struct {
	DB *sql.DB
}

func (r *OrganisationRepository) UpsertByName(o *model.Organisation) error {
	query := `
        INSERT INTO organisations (space_id, name, acronym, portfolio, website, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (space_id, name) DO UPDATE
        SET acronym=EXCLUDED.acronym, portfolio=EXCLUDED.portfolio, website=EXCLUDED.website
        RETURNING id
    `
	return r.DB.QueryRow(query, o.SpaceID, o.Name, o.Acronym, o.Portfolio, o.Website).Scan(&o.ID)
}

func (r *OrganisationRepository) ListBySpace(spaceID int) ([]model.Organisation, error) {
	query := `
        SELECT id, space_id, name, acronym, portfolio, website, created_at
        FROM organisations WHERE space_id=$1 ORDER BY name ASC
    `
	rows, err := r.DB.Query(query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	organisations := []model.Organisation{}
	for rows.Next() {
		var o model.Organisation
		if err := rows.Scan(&o.ID, &o.SpaceID, &o.Name, &o.Acronym, &o.Portfolio, &o.Website, &o.CreatedAt); err != nil {
			return nil, err
		}
		organisations = append(organisations, o)
	}
	return organisations, nil
}

func (r *OrganisationRepository) GetByID(id int) (*model.Organisation, error) {
	query := `
        SELECT id, space_id, name, acronym, portfolio, website, created_at
        FROM organisations WHERE id=$1
    `
	var o model.Organisation
	if err := r.DB.QueryRow(query, id).Scan(&o.ID, &o.SpaceID, &o.Name, &o.Acronym, &o.Portfolio, &o.Website, &o.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrganisationRepository) CreateContact(c *model.Contact) error {
	query := `
        INSERT INTO contacts (organisation_id, name, role, email, phone)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.OrganisationID, c.Name, c.Role, c.Email, c.Phone).Scan(&c.ID)
}

func (r *OrganisationRepository) ListContacts(organisationID int) ([]model.Contact, error) {
	query := `
        SELECT id, organisation_id, name, role, email, phone
        FROM contacts WHERE organisation_id=$1 ORDER BY name ASC
    `
	rows, err := r.DB.Query(query, organisationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.OrganisationID, &c.Name, &c.Role, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

var _ OrganisationRepositoryInterface = (*OrganisationRepository)(nil)
