package repository

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines interface for tag operations
type TagRepository interface {
	UpsertByName(ctx context.Context, name string) (*models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	List(ctx context.Context, p pagination.Page) ([]*models.Tag, string, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// UpsertByName creates the tag if its canonical name is new, otherwise
// returns the existing row. ON CONFLICT DO NOTHING makes concurrent
// creators converge on a single row: the loser of the race rereads the
// winner's tag instead of failing on the unique index.
func (r *tagRepository) UpsertByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: models.CanonicalTagName(name)}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(tag).Error
	if err != nil {
		return nil, err
	}
	if tag.ID == 0 {
		// Conflict path: the name already existed.
		if err := r.db.WithContext(ctx).Where("name = ?", tag.Name).First(tag).Error; err != nil {
			return nil, err
		}
	}
	return tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := cache.Aside(ctx, cache.TagKey(id), &tag, cache.TagTTL, func() error {
		return r.db.WithContext(ctx).First(&tag, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", models.CanonicalTagName(name)).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) List(ctx context.Context, p pagination.Page) ([]*models.Tag, string, error) {
	tags := []*models.Tag{}
	if err := r.db.WithContext(ctx).Scopes(p.Scope("tags")).Find(&tags).Error; err != nil {
		return nil, "", err
	}
	return tags, pagination.Next(tags, p.Limit), nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Save(tag).Error; err != nil {
		return err
	}
	cache.InvalidateTag(ctx, tag.ID)
	return nil
}

// Delete removes a tag and detaches it from every post. Posts carrying
// the tag are untouched.
func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateTag(ctx, id)
	cache.InvalidatePostsList(ctx)
	return nil
}
