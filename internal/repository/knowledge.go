package repository

import (
	"context"
	"errors"

	"kms/internal/models"

	"gorm.io/gorm"
)

// SearchFilter carries the optional knowledge search parameters. Empty fields
// impose no constraint.
type SearchFilter struct {
	Technology string
	Level      string
	Keyword    string
}

// KnowledgeRepository defines persistence operations for knowledge articles.
type KnowledgeRepository interface {
	Create(ctx context.Context, k *models.Knowledge) error
	GetByID(ctx context.Context, id uint) (*models.Knowledge, error)
	List(ctx context.Context) ([]*models.Knowledge, error)
	Search(ctx context.Context, filter SearchFilter) ([]*models.Knowledge, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Knowledge, error)
	Delete(ctx context.Context, id uint) error
}

type knowledgeRepository struct {
	db *gorm.DB
}

// NewKnowledgeRepository returns a new KnowledgeRepository implementation.
func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

// applyCommentsCount adds a subquery computing comments_count in the same query.
func (r *knowledgeRepository) applyCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("knowledge.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.knowledge_id = knowledge.id) AS comments_count")
}

func (r *knowledgeRepository) Create(ctx context.Context, k *models.Knowledge) error {
	if err := r.db.WithContext(ctx).Create(k).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id uint) (*models.Knowledge, error) {
	var k models.Knowledge
	err := r.applyCommentsCount(r.db.WithContext(ctx).Model(&models.Knowledge{})).
		First(&k, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Knowledge", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &k, nil
}

func (r *knowledgeRepository) List(ctx context.Context) ([]*models.Knowledge, error) {
	var items []*models.Knowledge
	err := r.applyCommentsCount(r.db.WithContext(ctx).Model(&models.Knowledge{})).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// Search composes the filter query clause by clause. Every variable value is
// bound as a parameter in the order its clause is appended; filter text never
// reaches the SQL string itself. Matching articles carry their comments
// inline plus a comments_count, newest articles first.
func (r *knowledgeRepository) Search(ctx context.Context, filter SearchFilter) ([]*models.Knowledge, error) {
	q := r.applyCommentsCount(r.db.WithContext(ctx).Model(&models.Knowledge{}))

	if filter.Technology != "" {
		q = q.Where("technology ILIKE ?", "%"+filter.Technology+"%")
	}
	if filter.Level != "" {
		q = q.Where("level ILIKE ?", "%"+filter.Level+"%")
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		q = q.Where("title ILIKE ? OR content ILIKE ?", like, like)
	}

	var items []*models.Knowledge
	err := q.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comments.created_at ASC")
	}).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// Update applies the given column values and returns the fresh row.
// updated_at is refreshed by GORM on every successful update.
func (r *knowledgeRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Knowledge, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Knowledge{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Knowledge", id)
	}
	return r.GetByID(ctx, id)
}

func (r *knowledgeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Knowledge{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Knowledge", id)
	}
	return nil
}
