package service

import (
	"context"
	"errors"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/policy"
	"quill/internal/repository"

	"gorm.io/gorm"
)

type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	postRepo     repository.PostRepository
	// duplicatePolicy is BOOKMARK_DUPLICATE_POLICY: idempotent (repeat
	// bookmarks return the existing row) or conflict (repeat bookmarks
	// are rejected with 409).
	duplicatePolicy string
}

type CreateBookmarkInput struct {
	Actor  policy.Actor
	PostID uint
	// UserID is only accepted when it names the actor; bookmarks cannot
	// be created on someone else's behalf.
	UserID *uint
}

type ListBookmarksInput struct {
	Actor policy.Actor
	Page  pagination.Page
}

type DeleteBookmarkInput struct {
	Actor      policy.Actor
	BookmarkID uint
}

func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, postRepo repository.PostRepository, duplicatePolicy string) *BookmarkService {
	if duplicatePolicy == "" {
		duplicatePolicy = config.BookmarkPolicyIdempotent
	}
	return &BookmarkService{
		bookmarkRepo:    bookmarkRepo,
		postRepo:        postRepo,
		duplicatePolicy: duplicatePolicy,
	}
}

// CreateBookmark records the actor's bookmark on a post. The second
// return value reports whether a new row was created; under the
// idempotent policy a repeat bookmark returns the existing row with
// created=false.
func (s *BookmarkService) CreateBookmark(ctx context.Context, in CreateBookmarkInput) (*models.Bookmark, bool, error) {
	if in.PostID == 0 {
		return nil, false, models.NewValidationError("post_id is required")
	}
	if in.UserID != nil && *in.UserID != in.Actor.ID {
		return nil, false, models.NewValidationError("user_id cannot name another user")
	}

	if d := policy.Decide(in.Actor, policy.ActionCreate, policy.BookmarkRef{OwnerID: in.Actor.ID}); !d.Allowed {
		return nil, false, models.NewForbiddenError(d.Reason)
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, models.NewDanglingReferenceError("post", in.PostID)
		}
		return nil, false, err
	}
	if d := policy.Decide(in.Actor, policy.ActionRead, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return nil, false, models.NewForbiddenError(d.Reason)
	}

	bm := &models.Bookmark{
		UserID: in.Actor.ID,
		PostID: in.PostID,
	}
	created, err := s.bookmarkRepo.Create(ctx, bm)
	if err != nil {
		return nil, false, err
	}
	if !created && s.duplicatePolicy == config.BookmarkPolicyConflict {
		return nil, false, models.NewConflictError("Post is already bookmarked")
	}
	return bm, created, nil
}

func (s *BookmarkService) ListBookmarks(ctx context.Context, in ListBookmarksInput) ([]*models.Bookmark, string, error) {
	if d := policy.Decide(in.Actor, policy.ActionRead, policy.BookmarkRef{OwnerID: in.Actor.ID}); !d.Allowed {
		return nil, "", models.NewForbiddenError(d.Reason)
	}
	return s.bookmarkRepo.ListByUser(ctx, in.Actor.ID, in.Page)
}

func (s *BookmarkService) DeleteBookmark(ctx context.Context, in DeleteBookmarkInput) error {
	bm, err := s.bookmarkRepo.GetByID(ctx, in.BookmarkID)
	if err != nil {
		return err
	}
	if d := policy.Decide(in.Actor, policy.ActionDelete, policy.BookmarkRef{OwnerID: bm.UserID}); !d.Allowed {
		return models.NewForbiddenError(d.Reason)
	}
	return s.bookmarkRepo.Delete(ctx, in.BookmarkID)
}
