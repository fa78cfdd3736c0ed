package service

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/policy"
	"quill/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	Actor    policy.Actor
	PostID   uint
	ParentID *uint
	Body     string
}

type ListCommentsInput struct {
	Actor    policy.Actor
	PostID   *uint
	AuthorID *uint
	Page     pagination.Page
}

type UpdateCommentInput struct {
	Actor     policy.Actor
	CommentID uint
	Body      string
}

type DeleteCommentInput struct {
	Actor     policy.Actor
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Body too long (max 10000 characters)")
	}

	if d := policy.Decide(in.Actor, policy.ActionCreate, policy.CommentRef{AuthorID: in.Actor.ID}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewDanglingReferenceError("post", in.PostID)
		}
		return nil, err
	}
	// Commenting requires read access to the target post, so a draft
	// stays invisible to everyone but its author.
	if d := policy.Decide(in.Actor, policy.ActionRead, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewDanglingReferenceError("comment", *in.ParentID)
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.Actor.ID,
		ParentID: in.ParentID,
		Body:     in.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]*models.Comment, string, error) {
	if in.PostID != nil {
		post, err := s.postRepo.GetByID(ctx, *in.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", nil
			}
			return nil, "", err
		}
		if d := policy.Decide(in.Actor, policy.ActionRead, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
			return nil, "", models.NewForbiddenError(d.Reason)
		}
	}
	filter := repository.CommentFilter{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
	}
	return s.commentRepo.List(ctx, filter, in.Page)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Body too long (max 10000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if d := policy.Decide(in.Actor, policy.ActionUpdate, policy.CommentRef{AuthorID: comment.AuthorID}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	comment.Body = in.Body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if d := policy.Decide(in.Actor, policy.ActionDelete, policy.CommentRef{AuthorID: comment.AuthorID}); !d.Allowed {
		return models.NewForbiddenError(d.Reason)
	}
	return s.commentRepo.Delete(ctx, in.CommentID)
}
