package mocks

import (
	"context"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportBatchFunc func(ctx context.Context, tenantID string, files []models.ImportFile, mapping models.ColumnMapping, progress models.ProgressFunc) (*models.ImportRunResult, error)
	Batches         [][]models.ImportFile
	Mappings        []models.ColumnMapping
	Tenants         []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportBatch(ctx context.Context, tenantID string, files []models.ImportFile, mapping models.ColumnMapping, progress models.ProgressFunc) (*models.ImportRunResult, error) {
	m.Batches = append(m.Batches, files)
	m.Mappings = append(m.Mappings, mapping)
	m.Tenants = append(m.Tenants, tenantID)
	if m.ImportBatchFunc != nil {
		return m.ImportBatchFunc(ctx, tenantID, files, mapping, progress)
	}
	result := &models.ImportRunResult{}
	for _, f := range files {
		result.Add(models.FileResult{FileName: f.Name})
	}
	return result, nil
}

// MockDuplicateService is a mock implementation of DuplicateService
type MockDuplicateService struct {
	FindFunc      func(ctx context.Context, tenantID, nom, prenom, dateNaissance string) ([]models.DuplicateCandidate, error)
	AuthorizeFunc func(ctx context.Context, caller models.Caller, ids []string) error
	DeleteFunc    func(ctx context.Context, caller models.Caller, ids []string) (int, error)
	Callers       []models.Caller
}

// Verify interface compliance
var _ service.DuplicateService = (*MockDuplicateService)(nil)

func NewMockDuplicateService() *MockDuplicateService {
	return &MockDuplicateService{}
}

func (m *MockDuplicateService) FindDuplicates(ctx context.Context, tenantID, nom, prenom, dateNaissance string) ([]models.DuplicateCandidate, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tenantID, nom, prenom, dateNaissance)
	}
	return []models.DuplicateCandidate{}, nil
}

func (m *MockDuplicateService) AuthorizeBulkDelete(ctx context.Context, caller models.Caller, ids []string) error {
	m.Callers = append(m.Callers, caller)
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, caller, ids)
	}
	return nil
}

func (m *MockDuplicateService) BulkDelete(ctx context.Context, caller models.Caller, ids []string) (int, error) {
	m.Callers = append(m.Callers, caller)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, ids)
	}
	return len(ids), nil
}

// MockOptionService is a mock implementation of OptionService
type MockOptionService struct {
	RefreshFunc func(ctx context.Context, caller models.Caller) (int, error)
	Callers     []models.Caller
}

// Verify interface compliance
var _ service.OptionService = (*MockOptionService)(nil)

func NewMockOptionService() *MockOptionService {
	return &MockOptionService{}
}

func (m *MockOptionService) Refresh(ctx context.Context, caller models.Caller) (int, error) {
	m.Callers = append(m.Callers, caller)
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, caller)
	}
	return 0, nil
}
