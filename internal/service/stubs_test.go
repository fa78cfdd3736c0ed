package service

import (
	"context"
	"errors"
	"testing"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	listFn        func(context.Context, repository.PostFilter, pagination.Page) ([]*models.Post, string, error)
	updateFn      func(context.Context, *models.Post) error
	replaceTagsFn func(context.Context, *models.Post, []models.Tag) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, p pagination.Page) ([]*models.Post, string, error) {
	return s.listFn(ctx, f, p)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return s.replaceTagsFn(ctx, post, tags)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Published: true}, nil
		},
		listFn: func(_ context.Context, _ repository.PostFilter, _ pagination.Page) ([]*models.Post, string, error) {
			return nil, "", nil
		},
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		replaceTagsFn: func(_ context.Context, _ *models.Post, _ []models.Tag) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	upsertByNameFn func(context.Context, string) (*models.Tag, error)
	getByIDFn      func(context.Context, uint) (*models.Tag, error)
	getByNameFn    func(context.Context, string) (*models.Tag, error)
	getByIDsFn     func(context.Context, []uint) ([]models.Tag, error)
	listFn         func(context.Context, pagination.Page) ([]*models.Tag, string, error)
	updateFn       func(context.Context, *models.Tag) error
	deleteFn       func(context.Context, uint) error
}

func (s *tagRepoStub) UpsertByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.upsertByNameFn(ctx, name)
}
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.getByNameFn(ctx, name)
}
func (s *tagRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *tagRepoStub) List(ctx context.Context, p pagination.Page) ([]*models.Tag, string, error) {
	return s.listFn(ctx, p)
}
func (s *tagRepoStub) Update(ctx context.Context, tag *models.Tag) error {
	return s.updateFn(ctx, tag)
}
func (s *tagRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		upsertByNameFn: func(_ context.Context, name string) (*models.Tag, error) {
			return &models.Tag{ID: 1, Name: models.CanonicalTagName(name)}, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Tag, error) {
			return &models.Tag{ID: id, Name: "go"}, nil
		},
		getByNameFn: func(_ context.Context, _ string) (*models.Tag, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByIDsFn: func(_ context.Context, ids []uint) ([]models.Tag, error) {
			tags := make([]models.Tag, len(ids))
			for i, id := range ids {
				tags[i] = models.Tag{ID: id}
			}
			return tags, nil
		},
		listFn:   func(_ context.Context, _ pagination.Page) ([]*models.Tag, string, error) { return nil, "", nil },
		updateFn: func(_ context.Context, _ *models.Tag) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn  func(context.Context, *models.Comment) error
	getByIDFn func(context.Context, uint) (*models.Comment, error)
	listFn    func(context.Context, repository.CommentFilter, pagination.Page) ([]*models.Comment, string, error)
	updateFn  func(context.Context, *models.Comment) error
	deleteFn  func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) List(ctx context.Context, f repository.CommentFilter, p pagination.Page) ([]*models.Comment, string, error) {
	return s.listFn(ctx, f, p)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, comment *models.Comment) error {
			comment.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		},
		listFn: func(_ context.Context, _ repository.CommentFilter, _ pagination.Page) ([]*models.Comment, string, error) {
			return nil, "", nil
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// bookmarkRepoStub is a stub for repository.BookmarkRepository.
type bookmarkRepoStub struct {
	createFn     func(context.Context, *models.Bookmark) (bool, error)
	getByIDFn    func(context.Context, uint) (*models.Bookmark, error)
	listByUserFn func(context.Context, uint, pagination.Page) ([]*models.Bookmark, string, error)
	deleteFn     func(context.Context, uint) error
}

func (s *bookmarkRepoStub) Create(ctx context.Context, bm *models.Bookmark) (bool, error) {
	return s.createFn(ctx, bm)
}
func (s *bookmarkRepoStub) GetByID(ctx context.Context, id uint) (*models.Bookmark, error) {
	return s.getByIDFn(ctx, id)
}
func (s *bookmarkRepoStub) ListByUser(ctx context.Context, userID uint, p pagination.Page) ([]*models.Bookmark, string, error) {
	return s.listByUserFn(ctx, userID, p)
}
func (s *bookmarkRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopBookmarkRepo() *bookmarkRepoStub {
	return &bookmarkRepoStub{
		createFn: func(_ context.Context, bm *models.Bookmark) (bool, error) {
			bm.ID = 1
			return true, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Bookmark, error) {
			return &models.Bookmark{ID: id, UserID: 1, PostID: 1}, nil
		},
		listByUserFn: func(_ context.Context, _ uint, _ pagination.Page) ([]*models.Bookmark, string, error) {
			return nil, "", nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

// assertConflictError asserts that err is an AppError with code CONFLICT.
func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeConflict)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn        func(context.Context, uint, uint) (bool, error)
	countForPostFn  func(context.Context, uint) (int64, error)
	countForPostsFn func(context.Context, []uint) (map[uint]int64, error)
	likedByUserFn   func(context.Context, uint, []uint) (map[uint]bool, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleFn(ctx, userID, postID)
}
func (s *likeRepoStub) CountForPost(ctx context.Context, postID uint) (int64, error) {
	return s.countForPostFn(ctx, postID)
}
func (s *likeRepoStub) CountForPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.countForPostsFn(ctx, postIDs)
}
func (s *likeRepoStub) LikedByUser(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	return s.likedByUserFn(ctx, userID, postIDs)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		toggleFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		countForPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countForPostsFn: func(_ context.Context, _ []uint) (map[uint]int64, error) {
			return map[uint]int64{}, nil
		},
		likedByUserFn: func(_ context.Context, _ uint, _ []uint) (map[uint]bool, error) {
			return map[uint]bool{}, nil
		},
	}
}
