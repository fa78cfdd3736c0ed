package repository

import (
	"context"

	"quill/internal/models"
	"quill/internal/pagination"

	"gorm.io/gorm"
)

// CommentFilter narrows a comment listing.
type CommentFilter struct {
	PostID   *uint
	AuthorID *uint
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	List(ctx context.Context, f CommentFilter, p pagination.Page) ([]*models.Comment, string, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, f CommentFilter, p pagination.Page) ([]*models.Comment, string, error) {
	db := r.db.WithContext(ctx).Model(&models.Comment{})
	if f.PostID != nil {
		db = db.Where("post_id = ?", *f.PostID)
	}
	if f.AuthorID != nil {
		db = db.Where("author_id = ?", *f.AuthorID)
	}

	comments := []*models.Comment{}
	if err := db.Scopes(p.Scope("comments")).Find(&comments).Error; err != nil {
		return nil, "", err
	}
	return comments, pagination.Next(comments, p.Limit), nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete removes a comment and promotes its direct replies to top level,
// so no reply is left pointing at a missing parent.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
