package service_test

import (
	"strings"
	"testing"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/service"
)

type MockOpportunityRepo struct {
	opportunities map[string]*model.Opportunity
	nextID        int
}

func NewMockOpportunityRepo() *MockOpportunityRepo {
	return &MockOpportunityRepo{opportunities: map[string]*model.Opportunity{}, nextID: 1}
}

func (m *MockOpportunityRepo) UpsertByExternalID(o *model.Opportunity) (bool, error) {
	if existing, ok := m.opportunities[o.ExternalID]; ok {
		o.ID = existing.ID
		m.opportunities[o.ExternalID] = o
		return false, nil
	}
	o.ID = m.nextID
	m.nextID++
	m.opportunities[o.ExternalID] = o
	return true, nil
}

func (m *MockOpportunityRepo) ListOpportunities(spaceID, offset, limit int, status, department string) ([]*model.Opportunity, int, error) {
	return []*model.Opportunity{}, 0, nil
}
func (m *MockOpportunityRepo) GetByID(id int) (*model.Opportunity, error) { return nil, nil }
func (m *MockOpportunityRepo) UpdateStatus(id int, status string) error   { return nil }
func (m *MockOpportunityRepo) Delete(id int) error                        { return nil }

type MockOrganisationRepo struct{}

func (m *MockOrganisationRepo) UpsertByName(o *model.Organisation) error { o.ID = 1; return nil }
func (m *MockOrganisationRepo) ListBySpace(spaceID int) ([]model.Organisation, error) {
	return []model.Organisation{}, nil
}
func (m *MockOrganisationRepo) GetByID(id int) (*model.Organisation, error) { return nil, nil }
func (m *MockOrganisationRepo) CreateContact(c *model.Contact) error        { c.ID = 1; return nil }
func (m *MockOrganisationRepo) ListContacts(organisationID int) ([]model.Contact, error) {
	return []model.Contact{}, nil
}

type MockMappingRepo struct {
	mappings []model.DepartmentMapping
}

func (m *MockMappingRepo) Create(dm *model.DepartmentMapping) error {
	dm.ID = len(m.mappings) + 1
	m.mappings = append(m.mappings, *dm)
	return nil
}

func (m *MockMappingRepo) ListBySpace(spaceID int) ([]model.DepartmentMapping, error) {
	return m.mappings, nil
}

func (m *MockMappingRepo) Delete(id int) error { return nil }

func newBuyICTService(mappings []model.DepartmentMapping) (*service.BuyICTService, *MockOpportunityRepo) {
	opportunityRepo := NewMockOpportunityRepo()
	svc := &service.BuyICTService{
		OpportunityRepo:  opportunityRepo,
		OrganisationRepo: &MockOrganisationRepo{},
		MappingRepo:      &MockMappingRepo{mappings: mappings},
	}
	return svc, opportunityRepo
}

func TestMatchesMapping(t *testing.T) {
	cases := []struct {
		pattern   string
		matchType string
		sample    string
		want      bool
	}{
		{"Department of Defence", "exact", "department of defence", true},
		{"Department of Defence", "exact", " Department of Defence ", true},
		{"Department of Defence", "exact", "Department of Defence and Veterans", false},
		{"defence", "contains", "Department of Defence", true},
		{"defence", "contains", "Services Australia", false},
		{"^Australian Taxation", "regex", "Australian Taxation Office", true},
		{"^Australian Taxation", "regex", "The Australian Taxation Office", false},
		{"Department of Defense", "fuzzy", "Department of Defence", true},
		{"Home Affairs", "fuzzy", "Department of Home Affairs", true}, // containment
		{"Home Affairs", "fuzzy", "Services Australia", false},
		{"", "fuzzy", "anything", false},
	}

	for _, c := range cases {
		got, err := service.MatchesMapping(c.pattern, c.matchType, c.sample)
		if err != nil {
			t.Errorf("MatchesMapping(%q, %s, %q): unexpected error %v", c.pattern, c.matchType, c.sample, err)
			continue
		}
		if got != c.want {
			t.Errorf("MatchesMapping(%q, %s, %q): expected %v, got %v", c.pattern, c.matchType, c.sample, c.want, got)
		}
	}
}

func TestMatchesMappingErrors(t *testing.T) {
	if _, err := service.MatchesMapping("[invalid", "regex", "sample"); err == nil {
		t.Error("expected error for invalid regex")
	}
	if _, err := service.MatchesMapping("x", "soundex", "sample"); err == nil {
		t.Error("expected error for unknown match type")
	}
}

func TestResolveDepartmentPriorityOrder(t *testing.T) {
	// ListBySpace returns mappings already ordered by priority, highest first.
	svc, _ := newBuyICTService([]model.DepartmentMapping{
		{ID: 1, Pattern: "Department of Defence", MatchType: "exact", Department: "Defence", Priority: 100},
		{ID: 2, Pattern: "department", MatchType: "contains", Department: "Generic", Priority: 10},
	})

	dept, err := svc.ResolveDepartment(1, "Department of Defence")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dept != "Defence" {
		t.Errorf("expected Defence from the higher-priority mapping, got %q", dept)
	}

	dept, _ = svc.ResolveDepartment(1, "Department of Health")
	if dept != "Generic" {
		t.Errorf("expected fallthrough to contains mapping, got %q", dept)
	}

	dept, _ = svc.ResolveDepartment(1, "Services Australia")
	if dept != "" {
		t.Errorf("expected no match, got %q", dept)
	}
}

func TestResolveDepartmentSkipsBadMappings(t *testing.T) {
	svc, _ := newBuyICTService([]model.DepartmentMapping{
		{ID: 1, Pattern: "[broken", MatchType: "regex", Department: "Broken", Priority: 100},
		{ID: 2, Pattern: "defence", MatchType: "contains", Department: "Defence", Priority: 10},
	})

	dept, err := svc.ResolveDepartment(1, "Department of Defence")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dept != "Defence" {
		t.Errorf("expected bad mapping skipped, got %q", dept)
	}
}

func TestImportCSVAliasedHeaders(t *testing.T) {
	svc, repo := newBuyICTService([]model.DepartmentMapping{
		{ID: 1, Pattern: "defence", MatchType: "contains", Department: "Defence", Priority: 10},
	})

	csvData := strings.Join([]string{
		"ATM ID,Opportunity Title,Agency,Closing Date,Link",
		"ATM-001,Cloud migration services,Department of Defence,2026-09-30,https://example.com/1",
		"ATM-002,Cyber uplift,Services Australia,30/09/2026,https://example.com/2",
		",Missing id row,Some Agency,,",
	}, "\n")

	result, err := svc.ImportCSV(1, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Updated != 0 || result.Skipped != 1 {
		t.Fatalf("expected 2 imported / 1 skipped, got %+v", result)
	}

	o := repo.opportunities["ATM-001"]
	if o == nil {
		t.Fatal("expected ATM-001 to be imported")
	}
	if o.Title != "Cloud migration services" {
		t.Errorf("unexpected title %q", o.Title)
	}
	if o.Department != "Defence" {
		t.Errorf("expected department resolved to Defence, got %q", o.Department)
	}
	if o.Source != model.OpportunitySourceCSV {
		t.Errorf("expected csv source, got %q", o.Source)
	}
	if o.CloseDate == nil || o.CloseDate.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("unexpected close date %v", o.CloseDate)
	}

	// dd/mm/yyyy layout
	o2 := repo.opportunities["ATM-002"]
	if o2.CloseDate == nil || o2.CloseDate.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("unexpected close date %v", o2.CloseDate)
	}

	// Re-import updates rather than duplicating.
	result, err = svc.ImportCSV(1, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 0 || result.Updated != 2 {
		t.Errorf("expected re-import to update, got %+v", result)
	}
}

func TestImportCSVRejectsMissingColumns(t *testing.T) {
	svc, _ := newBuyICTService(nil)

	if _, err := svc.ImportCSV(1, strings.NewReader("Agency,Closing Date\nA,2026-01-01")); err == nil {
		t.Error("expected error for CSV without id and title columns")
	}
}

func TestCreateMappingValidatesPattern(t *testing.T) {
	svc, _ := newBuyICTService(nil)

	err := svc.CreateMapping(&model.DepartmentMapping{
		SpaceID: 1, Pattern: "[broken", MatchType: "regex", Department: "X",
	})
	if err == nil {
		t.Error("expected invalid regex to be rejected")
	}

	err = svc.CreateMapping(&model.DepartmentMapping{
		SpaceID: 1, Pattern: "defence", MatchType: "contains", Department: "Defence",
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateContactRequiresName(t *testing.T) {
	svc, _ := newBuyICTService(nil)

	if err := svc.CreateContact(&model.Contact{OrganisationID: 1}); err == nil {
		t.Error("expected error for empty contact name")
	}
	if err := svc.CreateContact(&model.Contact{OrganisationID: 1, Name: "Jess Chen"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
