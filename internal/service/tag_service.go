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

type TagService struct {
	tagRepo repository.TagRepository
}

type CreateTagInput struct {
	Actor policy.Actor
	Name  string
}

type UpdateTagInput struct {
	Actor policy.Actor
	TagID uint
	Name  string
}

type DeleteTagInput struct {
	Actor policy.Actor
	TagID uint
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTag upserts by canonical name: creating "Go" when "go" exists
// returns the existing tag instead of erroring.
func (s *TagService) CreateTag(ctx context.Context, in CreateTagInput) (*models.Tag, error) {
	if err := validateTagNames([]string{in.Name}); err != nil {
		return nil, err
	}
	if d := policy.Decide(in.Actor, policy.ActionCreate, policy.TagRef{}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}
	return s.tagRepo.UpsertByName(ctx, in.Name)
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, id)
}

func (s *TagService) ListTags(ctx context.Context, p pagination.Page) ([]*models.Tag, string, error) {
	return s.tagRepo.List(ctx, p)
}

func (s *TagService) UpdateTag(ctx context.Context, in UpdateTagInput) (*models.Tag, error) {
	if err := validateTagNames([]string{in.Name}); err != nil {
		return nil, err
	}
	if d := policy.Decide(in.Actor, policy.ActionUpdate, policy.TagRef{}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	tag, err := s.tagRepo.GetByID(ctx, in.TagID)
	if err != nil {
		return nil, err
	}
	name := models.CanonicalTagName(in.Name)
	if tag.Name == name {
		return tag, nil
	}
	existing, err := s.tagRepo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != tag.ID {
		return nil, models.NewConflictError("A tag with that name already exists")
	}

	tag.Name = name
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, in DeleteTagInput) error {
	if d := policy.Decide(in.Actor, policy.ActionDelete, policy.TagRef{}); !d.Allowed {
		return models.NewForbiddenError(d.Reason)
	}
	return s.tagRepo.Delete(ctx, in.TagID)
}
