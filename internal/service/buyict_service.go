// internal/service/buyict_service.go
package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

const fuzzyMatchThreshold = 0.8

type BuyICTService struct {
	OpportunityRepo  repository.OpportunityRepositoryInterface
	OrganisationRepo repository.OrganisationRepositoryInterface
	MappingRepo      repository.DepartmentMappingRepositoryInterface
}

// ListOpportunities fetches opportunities with pagination
func (s *BuyICTService) ListOpportunities(spaceID, page, pageSize int, status, department string) ([]model.Opportunity, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.OpportunityRepo.ListOpportunities(spaceID, offset, pageSize, status, department)
	if err != nil {
		return nil, nil, err
	}

	opportunities := make([]model.Opportunity, len(ptrs))
	for i, o := range ptrs {
		opportunities[i] = *o
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return opportunities, pagination, nil
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// csvAliases maps a canonical field to the header names it may appear under.
// Headers are normalised (lowercased, punctuation collapsed) before lookup.
var csvAliases = map[string][]string{
	"external_id":  {"id", "external id", "reference", "atm id", "opportunity id"},
	"title":        {"title", "opportunity title", "opportunity", "name"},
	"buyer_entity": {"buyer", "buyer entity", "agency", "entity", "organisation"},
	"category":     {"category", "type", "panel category"},
	"value_band":   {"value", "estimated value", "value band"},
	"close_date":   {"close date", "closing date", "closes", "deadline"},
	"url":          {"url", "link"},
}

// ImportCSV ingests BuyICT opportunities from an uploaded CSV. Column order is
// irrelevant; headers are matched through the alias table. Rows missing the
// required fields are counted as skipped, never abort the import.
func (s *BuyICTService) ImportCSV(spaceID int, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := resolveColumns(header)
	if _, ok := columns["external_id"]; !ok {
		return nil, fmt.Errorf("CSV is missing an id column")
	}
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("CSV is missing a title column")
	}

	result := &ImportResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("[BuyICTService] Bad CSV row", slog.Any("error", err))
			result.Skipped++
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		externalID := field("external_id")
		title := field("title")
		if externalID == "" || title == "" {
			result.Skipped++
			continue
		}

		buyer := field("buyer_entity")
		department, err := s.ResolveDepartment(spaceID, buyer)
		if err != nil {
			slog.Warn("[BuyICTService] Department resolution failed", slog.Any("error", err))
		}

		o := &model.Opportunity{
			SpaceID:     spaceID,
			ExternalID:  externalID,
			Title:       title,
			BuyerEntity: buyer,
			Department:  department,
			Category:    field("category"),
			ValueBand:   field("value_band"),
			CloseDate:   parseCloseDate(field("close_date")),
			Source:      model.OpportunitySourceCSV,
			URL:         field("url"),
		}

		created, err := s.OpportunityRepo.UpsertByExternalID(o)
		if err != nil {
			slog.Warn("[BuyICTService] Upsert failed", slog.String("external_id", externalID), slog.Any("error", err))
			result.Skipped++
			continue
		}
		if created {
			result.Imported++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

var headerNormaliser = regexp.MustCompile(`[^a-z0-9]+`)

func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerNormaliser.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}

func resolveColumns(header []string) map[string]int {
	columns := map[string]int{}
	for idx, raw := range header {
		normalised := normaliseHeader(raw)
		for field, aliases := range csvAliases {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalised == alias {
					columns[field] = idx
					break
				}
			}
		}
	}
	return columns
}

var closeDateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func parseCloseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range closeDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// MatchesMapping decides whether a raw buyer-entity string matches a
// department-mapping pattern under the given match type.
func MatchesMapping(pattern, matchType, sample string) (bool, error) {
	switch matchType {
	case model.MatchTypeExact:
		return strings.EqualFold(strings.TrimSpace(pattern), strings.TrimSpace(sample)), nil

	case model.MatchTypeContains:
		return strings.Contains(strings.ToLower(sample), strings.ToLower(pattern)), nil

	case model.MatchTypeRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		return re.MatchString(sample), nil

	case model.MatchTypeFuzzy:
		p := strings.ToLower(strings.TrimSpace(pattern))
		s := strings.ToLower(strings.TrimSpace(sample))
		if p == "" || s == "" {
			return false, nil
		}
		if strings.Contains(s, p) || strings.Contains(p, s) {
			return true, nil
		}
		return fuzzyRatio(p, s) >= fuzzyMatchThreshold, nil

	default:
		return false, fmt.Errorf("unknown match type %q", matchType)
	}
}

// fuzzyRatio is a normalised Levenshtein similarity in [0,1].
func fuzzyRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// ResolveDepartment walks the space's mappings in priority order and returns
// the department of the first one that matches the buyer entity. Invalid
// patterns are skipped rather than failing the whole resolution.
func (s *BuyICTService) ResolveDepartment(spaceID int, buyerEntity string) (string, error) {
	if strings.TrimSpace(buyerEntity) == "" {
		return "", nil
	}

	mappings, err := s.MappingRepo.ListBySpace(spaceID)
	if err != nil {
		return "", err
	}

	for _, m := range mappings {
		ok, err := MatchesMapping(m.Pattern, m.MatchType, buyerEntity)
		if err != nil {
			slog.Warn("[BuyICTService] Skipping bad mapping",
				slog.Int("mapping_id", m.ID), slog.Any("error", err))
			continue
		}
		if ok {
			return m.Department, nil
		}
	}
	return "", nil
}

func (s *BuyICTService) CreateMapping(m *model.DepartmentMapping) error {
	if _, err := MatchesMapping(m.Pattern, m.MatchType, "probe"); err != nil {
		return err
	}
	return s.MappingRepo.Create(m)
}

func (s *BuyICTService) ListMappings(spaceID int) ([]model.DepartmentMapping, error) {
	return s.MappingRepo.ListBySpace(spaceID)
}

func (s *BuyICTService) DeleteMapping(id int) error {
	return s.MappingRepo.Delete(id)
}

func (s *BuyICTService) ListOrganisations(spaceID int) ([]model.Organisation, error) {
	return s.OrganisationRepo.ListBySpace(spaceID)
}

func (s *BuyICTService) CreateContact(c *model.Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contact name cannot be empty")
	}
	return s.OrganisationRepo.CreateContact(c)
}

func (s *BuyICTService) ListContacts(organisationID int) ([]model.Contact, error) {
	return s.OrganisationRepo.ListContacts(organisationID)
}
