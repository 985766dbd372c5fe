package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.CaseRepository   = (*MockCaseRepository)(nil)
	_ repository.OptionRepository = (*MockOptionRepository)(nil)
)

// MockCaseRepository is an in-memory CaseRepository
type MockCaseRepository struct {
	mu sync.Mutex

	Cases           map[string]*models.Case
	InsertError     error
	BulkInsertFunc  func(ctx context.Context, tenantID string, cases []*models.Case) (int, error)
	BulkInsertCalls int
	FindByIDsError  error
	FindEmailsError error
	DeleteCalls     int
	DeletedIDs      []string
}

func NewMockCaseRepository() *MockCaseRepository {
	return &MockCaseRepository{Cases: make(map[string]*models.Case)}
}

// Add stores cases directly, bypassing BulkInsert bookkeeping
func (m *MockCaseRepository) Add(cases ...*models.Case) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cases {
		m.Cases[c.ID] = c
	}
}

func (m *MockCaseRepository) BulkInsert(ctx context.Context, tenantID string, cases []*models.Case) (int, error) {
	m.mu.Lock()
	m.BulkInsertCalls++
	m.mu.Unlock()

	if m.BulkInsertFunc != nil {
		return m.BulkInsertFunc(ctx, tenantID, cases)
	}
	if m.InsertError != nil {
		return 0, m.InsertError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cases {
		c.TenantID = tenantID
		m.Cases[c.ID] = c
	}
	return len(cases), nil
}

func (m *MockCaseRepository) FindByNames(ctx context.Context, tenantID, nom, prenom string, limit int) ([]*models.Case, error) {
	nom = strings.ToLower(strings.TrimSpace(nom))
	prenom = strings.ToLower(strings.TrimSpace(prenom))
	return m.filter(tenantID, limit, func(c *models.Case) bool {
		return strings.Contains(strings.ToLower(c.Nom), nom) &&
			strings.Contains(strings.ToLower(c.Prenom), prenom)
	}), nil
}

func (m *MockCaseRepository) FindByExactName(ctx context.Context, tenantID, nom, prenom string) ([]*models.Case, error) {
	nom = strings.ToLower(strings.TrimSpace(nom))
	prenom = strings.ToLower(strings.TrimSpace(prenom))
	return m.filter(tenantID, 0, func(c *models.Case) bool {
		return strings.ToLower(strings.TrimSpace(c.Nom)) == nom &&
			strings.ToLower(strings.TrimSpace(c.Prenom)) == prenom
	}), nil
}

func (m *MockCaseRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Case, error) {
	if m.FindByIDsError != nil {
		return nil, m.FindByIDsError
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.filter(tenantID, 0, func(c *models.Case) bool { return want[c.ID] }), nil
}

func (m *MockCaseRepository) DeleteByIDs(ctx context.Context, tenantID string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	deleted := 0
	for _, id := range ids {
		if c, ok := m.Cases[id]; ok && c.TenantID == tenantID {
			delete(m.Cases, id)
			m.DeletedIDs = append(m.DeletedIDs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockCaseRepository) FindEmails(ctx context.Context, tenantID string, emails []string) ([]string, error) {
	if m.FindEmailsError != nil {
		return nil, m.FindEmailsError
	}
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			want[e] = true
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var found []string
	for _, c := range m.Cases {
		e := strings.ToLower(c.Email)
		if c.TenantID == tenantID && want[e] {
			found = append(found, e)
			delete(want, e)
		}
	}
	return found, nil
}

func (m *MockCaseRepository) Count(ctx context.Context, tenantID string) (int, error) {
	return len(m.filter(tenantID, 0, func(*models.Case) bool { return true })), nil
}

// filter returns matching cases of the tenant ordered by ID
func (m *MockCaseRepository) filter(tenantID string, limit int, match func(*models.Case) bool) []*models.Case {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Case
	for _, c := range m.Cases {
		if c.TenantID == tenantID && match(c) {
			out = append(out, c)
		}
	}
	sortByID(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByID(cases []*models.Case) {
	for i := 1; i < len(cases); i++ {
		for j := i; j > 0 && cases[j].ID < cases[j-1].ID; j-- {
			cases[j], cases[j-1] = cases[j-1], cases[j]
		}
	}
}

// MockOptionRepository is an in-memory OptionRepository keyed by category
type MockOptionRepository struct {
	Options map[string][]models.DropdownOption
	Err     error
	Calls   int
}

func NewMockOptionRepository() *MockOptionRepository {
	return &MockOptionRepository{Options: make(map[string][]models.DropdownOption)}
}

func (m *MockOptionRepository) ListByCategory(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Options[category], nil
}
