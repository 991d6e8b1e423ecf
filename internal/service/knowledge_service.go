// Package service contains the business rules sitting between HTTP handlers
// and repositories.
package service

import (
	"context"

	"kms/internal/models"
	"kms/internal/repository"

	"github.com/lib/pq"
)

// KnowledgeService owns article lifecycle rules: technology resolution on
// create, author-only mutation, and the moderation path.
type KnowledgeService struct {
	knowledgeRepo  repository.KnowledgeRepository
	technologyRepo repository.TechnologyRepository
	commentRepo    repository.CommentRepository
}

// NewKnowledgeService creates a new KnowledgeService.
func NewKnowledgeService(
	knowledgeRepo repository.KnowledgeRepository,
	technologyRepo repository.TechnologyRepository,
	commentRepo repository.CommentRepository,
) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo:  knowledgeRepo,
		technologyRepo: technologyRepo,
		commentRepo:    commentRepo,
	}
}

type CreateKnowledgeInput struct {
	AuthorID   uint
	Technology string
	Level      string
	Title      string
	Content    string
	Tags       []string
}

type UpdateKnowledgeInput struct {
	UserID      uint
	KnowledgeID uint
	Technology  string
	Level       string
	Title       string
	Content     string
	Tags        []string
	Status      string
}

type CreateCommentInput struct {
	UserID      uint
	KnowledgeID uint
	Content     string
	ParentID    *uint
}

// Create resolves the technology name to its catalog id and stores the
// article as Pending. The name lookup and the insert are two round trips; a
// rename in between surfaces as the validation error below.
func (s *KnowledgeService) Create(ctx context.Context, in CreateKnowledgeInput) (*models.Knowledge, error) {
	if in.Technology == "" || in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Technology, title and content are required")
	}

	tech, err := s.technologyRepo.GetByName(ctx, in.Technology)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, models.NewValidationError("Unknown technology: " + in.Technology)
	}

	k := &models.Knowledge{
		Technology:   in.Technology,
		TechnologyID: &tech.ID,
		Level:        in.Level,
		Title:        in.Title,
		Content:      in.Content,
		Tags:         pq.StringArray(in.Tags),
		Status:       models.StatusPending,
		AuthorID:     in.AuthorID,
	}
	if err := s.knowledgeRepo.Create(ctx, k); err != nil {
		return nil, err
	}
	return s.knowledgeRepo.GetByID(ctx, k.ID)
}

func (s *KnowledgeService) Get(ctx context.Context, id uint) (*models.Knowledge, error) {
	return s.knowledgeRepo.GetByID(ctx, id)
}

func (s *KnowledgeService) List(ctx context.Context) ([]*models.Knowledge, error) {
	return s.knowledgeRepo.List(ctx)
}

func (s *KnowledgeService) Search(ctx context.Context, filter repository.SearchFilter) ([]*models.Knowledge, error) {
	return s.knowledgeRepo.Search(ctx, filter)
}

// Update overwrites every content field with the caller's values; partial
// update is not supported for them. Status alone is coalesced: an empty
// status keeps the stored value.
func (s *KnowledgeService) Update(ctx context.Context, in UpdateKnowledgeInput) (*models.Knowledge, error) {
	k, err := s.knowledgeRepo.GetByID(ctx, in.KnowledgeID)
	if err != nil {
		return nil, err
	}
	if k.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own knowledge")
	}

	fields := map[string]interface{}{
		"technology": in.Technology,
		"level":      in.Level,
		"title":      in.Title,
		"content":    in.Content,
		"tags":       pq.StringArray(in.Tags),
	}
	if in.Status != "" {
		if !models.ValidStatus(in.Status) {
			return nil, models.NewValidationError("Status must be Pending, Approved or Rejected")
		}
		fields["status"] = in.Status
	}

	return s.knowledgeRepo.Update(ctx, in.KnowledgeID, fields)
}

// Delete removes the article after checking the requester authored it.
func (s *KnowledgeService) Delete(ctx context.Context, userID, knowledgeID uint) error {
	k, err := s.knowledgeRepo.GetByID(ctx, knowledgeID)
	if err != nil {
		return err
	}
	if k.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own knowledge")
	}
	return s.knowledgeRepo.Delete(ctx, knowledgeID)
}

// Moderate is the admin status transition. It bypasses the ownership check
// and allows any status to any status.
func (s *KnowledgeService) Moderate(ctx context.Context, knowledgeID uint, status string) (*models.Knowledge, error) {
	if !models.ValidStatus(status) {
		return nil, models.NewValidationError("Status must be Pending, Approved or Rejected")
	}
	return s.knowledgeRepo.Update(ctx, knowledgeID, map[string]interface{}{"status": status})
}

// CreateComment attaches a comment to an existing article.
func (s *KnowledgeService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if _, err := s.knowledgeRepo.GetByID(ctx, in.KnowledgeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:     in.Content,
		KnowledgeID: in.KnowledgeID,
		ParentID:    in.ParentID,
		UserID:      in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns an article's comments, oldest first.
func (s *KnowledgeService) ListComments(ctx context.Context, knowledgeID uint) ([]*models.Comment, error) {
	if _, err := s.knowledgeRepo.GetByID(ctx, knowledgeID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByKnowledge(ctx, knowledgeID)
}
