package repository

import (
	"context"

	"quill/internal/models"
	"quill/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository defines interface for bookmark operations
type BookmarkRepository interface {
	// Create inserts the bookmark unless the (user, post) pair already
	// exists, in which case it loads the existing row into bm. The
	// returned bool reports whether a new row was created.
	Create(ctx context.Context, bm *models.Bookmark) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Bookmark, error)
	ListByUser(ctx context.Context, userID uint, p pagination.Page) ([]*models.Bookmark, string, error)
	Delete(ctx context.Context, id uint) error
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository creates a new BookmarkRepository
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, bm *models.Bookmark) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(bm)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Duplicate (user, post): surface the existing bookmark.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", bm.UserID, bm.PostID).
		First(bm).Error
	return false, err
}

func (r *bookmarkRepository) GetByID(ctx context.Context, id uint) (*models.Bookmark, error) {
	var bm models.Bookmark
	if err := r.db.WithContext(ctx).First(&bm, id).Error; err != nil {
		return nil, err
	}
	return &bm, nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint, p pagination.Page) ([]*models.Bookmark, string, error) {
	bookmarks := []*models.Bookmark{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(p.Scope("bookmarks")).
		Find(&bookmarks).Error
	if err != nil {
		return nil, "", err
	}
	return bookmarks, pagination.Next(bookmarks, p.Limit), nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Bookmark{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
