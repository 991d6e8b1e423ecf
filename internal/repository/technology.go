package repository

import (
	"context"
	"errors"

	"kms/internal/models"

	"gorm.io/gorm"
)

// TechnologyRepository defines persistence operations for the technology catalog.
type TechnologyRepository interface {
	Create(ctx context.Context, tech *models.Technology) error
	GetByID(ctx context.Context, id uint) (*models.Technology, error)
	GetByName(ctx context.Context, name string) (*models.Technology, error)
	List(ctx context.Context) ([]*models.Technology, error)
	Update(ctx context.Context, tech *models.Technology) error
	Delete(ctx context.Context, id uint) error
}

type technologyRepository struct {
	db *gorm.DB
}

// NewTechnologyRepository returns a new TechnologyRepository implementation.
func NewTechnologyRepository(db *gorm.DB) TechnologyRepository {
	return &technologyRepository{db: db}
}

func (r *technologyRepository) Create(ctx context.Context, tech *models.Technology) error {
	if err := r.db.WithContext(ctx).Create(tech).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Technology name already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *technologyRepository) GetByID(ctx context.Context, id uint) (*models.Technology, error) {
	var tech models.Technology
	if err := r.db.WithContext(ctx).First(&tech, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Technology", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tech, nil
}

// GetByName returns (nil, nil) when the catalog has no entry with that name.
func (r *technologyRepository) GetByName(ctx context.Context, name string) (*models.Technology, error) {
	var tech models.Technology
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tech).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tech, nil
}

func (r *technologyRepository) List(ctx context.Context) ([]*models.Technology, error) {
	var techs []*models.Technology
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&techs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return techs, nil
}

func (r *technologyRepository) Update(ctx context.Context, tech *models.Technology) error {
	if err := r.db.WithContext(ctx).Save(tech).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Technology name already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *technologyRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Technology{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Technology", id)
	}
	return nil
}
