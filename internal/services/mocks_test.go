package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/storage"
)

func newTestLogger() *logger.Logger {
	return logger.New("test", "disabled")
}

// MockQueryClient is a mock implementation of QueryClient for testing
type MockQueryClient struct {
	mock.Mock
}

func (m *MockQueryClient) RunSelectQuery(ctx context.Context, q crm.SelectQuery) (crm.Page, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(crm.Page), args.Error(1)
}

func (m *MockQueryClient) SearchRelated(ctx context.Context, module, criteria string, fields ...string) ([]crm.Record, error) {
	args := m.Called(ctx, module, criteria, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Record), args.Error(1)
}

// atOffset matches a select query on module starting at offset.
func atOffset(module string, offset int) interface{} {
	return mock.MatchedBy(func(q crm.SelectQuery) bool {
		return q.From == module && q.Offset == offset
	})
}

// fakeLister serves fixed files per prefix and records the prefixes asked for.
type fakeLister struct {
	mu       sync.Mutex
	files    map[string][]storage.File
	prefixes []string
}

func (f *fakeLister) ListPublicURLs(_ context.Context, prefix string) []storage.File {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	if files, ok := f.files[prefix]; ok {
		return files
	}
	return []storage.File{}
}

// MockCityRepository is a mock implementation of CityRepository for testing
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) Upsert(ctx context.Context, city models.City) (*models.City, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.City), args.Error(1)
}

// MockAttributeRepository is a mock implementation of AttributeRepository for testing
type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) Upsert(ctx context.Context, attr models.Attribute) (*models.Attribute, error) {
	args := m.Called(ctx, attr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attribute), args.Error(1)
}

// MockMegaProjectRepository is a mock implementation of MegaProjectRepository for testing
type MockMegaProjectRepository struct {
	mock.Mock
}

func (m *MockMegaProjectRepository) Upsert(ctx context.Context, mp models.MegaProject) (*models.MegaProject, error) {
	args := m.Called(ctx, mp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MegaProject), args.Error(1)
}

// MockProjectRepository is a mock implementation of ProjectRepository for testing
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Upsert(ctx context.Context, p models.Project) (*models.Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) PatchFiles(ctx context.Context, hc string, files models.ProjectFiles) (bool, error) {
	args := m.Called(ctx, hc, files)
	return args.Bool(0), args.Error(1)
}

// MockTypologyRepository is a mock implementation of TypologyRepository for testing
type MockTypologyRepository struct {
	mock.Mock
}

func (m *MockTypologyRepository) Upsert(ctx context.Context, t models.Typology) (*models.Typology, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Typology), args.Error(1)
}

func (m *MockTypologyRepository) Truncate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
