package server

import (
	"context"

	"kms/internal/models"
	"kms/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockKnowledgeRepository is a mock of the KnowledgeRepository interface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) Create(ctx context.Context, k *models.Knowledge) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) GetByID(ctx context.Context, id uint) (*models.Knowledge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Knowledge), args.Error(1)
}

func (m *MockKnowledgeRepository) List(ctx context.Context) ([]*models.Knowledge, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Knowledge), args.Error(1)
}

func (m *MockKnowledgeRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]*models.Knowledge, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Knowledge), args.Error(1)
}

func (m *MockKnowledgeRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Knowledge, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Knowledge), args.Error(1)
}

func (m *MockKnowledgeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTechnologyRepository is a mock of the TechnologyRepository interface
type MockTechnologyRepository struct {
	mock.Mock
}

func (m *MockTechnologyRepository) Create(ctx context.Context, tech *models.Technology) error {
	args := m.Called(ctx, tech)
	return args.Error(0)
}

func (m *MockTechnologyRepository) GetByID(ctx context.Context, id uint) (*models.Technology, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technology), args.Error(1)
}

func (m *MockTechnologyRepository) GetByName(ctx context.Context, name string) (*models.Technology, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technology), args.Error(1)
}

func (m *MockTechnologyRepository) List(ctx context.Context) ([]*models.Technology, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Technology), args.Error(1)
}

func (m *MockTechnologyRepository) Update(ctx context.Context, tech *models.Technology) error {
	args := m.Called(ctx, tech)
	return args.Error(0)
}

func (m *MockTechnologyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByKnowledge(ctx context.Context, knowledgeID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, knowledgeID)
	return args.Get(0).([]*models.Comment), args.Error(1)
}
