// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/policy"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Viewer drives visibility: regular
// viewers only see published posts plus their own drafts; elevated
// viewers see everything.
type PostFilter struct {
	AuthorID  *uint
	Published *bool
	TagName   string
	Search    string
	Viewer    policy.Actor
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, f PostFilter, p pagination.Page) ([]*models.Post, string, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).Preload("Tags").First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// frontPage is the cached payload for the unfiltered first page.
type frontPage struct {
	Posts []*models.Post `json:"posts"`
	Next  string         `json:"next"`
}

func (r *postRepository) List(ctx context.Context, f PostFilter, p pagination.Page) ([]*models.Post, string, error) {
	// The anonymous, unfiltered first page is by far the hottest read;
	// serve it cache-aside. Anything viewer-specific stays uncached.
	cacheable := f.AuthorID == nil && f.Published == nil &&
		f.TagName == "" && f.Search == "" &&
		p.After == nil && p.Limit == cache.FrontPageSize &&
		!f.Viewer.Authenticated() && !f.Viewer.Elevated()
	if cacheable {
		var fp frontPage
		err := cache.Aside(ctx, cache.PostsListKey, &fp, cache.ListTTL, func() error {
			posts, next, err := r.list(ctx, f, p)
			if err != nil {
				return err
			}
			fp = frontPage{Posts: posts, Next: next}
			return nil
		})
		if err != nil {
			return nil, "", err
		}
		if fp.Posts == nil {
			fp.Posts = []*models.Post{}
		}
		return fp.Posts, fp.Next, nil
	}
	return r.list(ctx, f, p)
}

func (r *postRepository) list(ctx context.Context, f PostFilter, p pagination.Page) ([]*models.Post, string, error) {
	db := r.db.WithContext(ctx).Model(&models.Post{}).Preload("Tags")

	if !f.Viewer.Elevated() {
		db = db.Where("posts.published = ? OR posts.author_id = ?", true, f.Viewer.ID)
	}
	if f.AuthorID != nil {
		db = db.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.Published != nil {
		db = db.Where("posts.published = ?", *f.Published)
	}
	if f.TagName != "" {
		db = db.Where(
			"posts.id IN (SELECT post_id FROM post_tags JOIN tags ON tags.id = post_tags.tag_id WHERE tags.name = ?)",
			models.CanonicalTagName(f.TagName),
		)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("posts.title LIKE ? OR posts.body LIKE ?", like, like)
	}

	posts := []*models.Post{}
	if err := db.Scopes(p.Scope("posts")).Find(&posts).Error; err != nil {
		return nil, "", err
	}
	return posts, pagination.Next(posts, p.Limit), nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Tags").Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes a post together with its comments, bookmarks, likes and tag
// associations in a single transaction, so a concurrent reader never
// observes a half-cascaded state.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
