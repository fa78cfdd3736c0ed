package service

import (
	"context"
	"fmt"
	"strings"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/policy"
	"quill/internal/repository"
)

const (
	maxTitleLen = 300
	maxBodyLen  = 50000 // 50K characters
	maxTagLen   = 64
	maxPostTags = 10
)

type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	likeRepo repository.LikeRepository
}

type CreatePostInput struct {
	Actor     policy.Actor
	Title     string
	Body      string
	Published bool
	// AuthorID is only accepted when it names the actor; authorship
	// cannot be assigned to someone else.
	AuthorID *uint
	TagNames []string
	TagIDs   []uint
}

type ListPostsInput struct {
	Actor     policy.Actor
	AuthorID  *uint
	Published *bool
	TagName   string
	Page      pagination.Page
}

type UpdatePostInput struct {
	Actor     policy.Actor
	PostID    uint
	Title     *string
	Body      *string
	Published *bool
	// TagNames/TagIDs replace the full tag set when non-nil.
	TagNames *[]string
	TagIDs   *[]uint
}

type DeletePostInput struct {
	Actor  policy.Actor
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository, likeRepo repository.LikeRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		tagRepo:  tagRepo,
		likeRepo: likeRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 50000 characters)")
	}
	if in.AuthorID != nil && *in.AuthorID != in.Actor.ID {
		return nil, models.NewValidationError("author_id cannot name another user")
	}
	if err := validateTagNames(in.TagNames); err != nil {
		return nil, err
	}
	if len(in.TagNames)+len(in.TagIDs) > maxPostTags {
		return nil, models.NewValidationError(fmt.Sprintf("A post cannot carry more than %d tags", maxPostTags))
	}

	if d := policy.Decide(in.Actor, policy.ActionCreate, policy.PostRef{AuthorID: in.Actor.ID}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	tags, err := s.resolveTags(ctx, in.TagNames, in.TagIDs)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
		AuthorID:  in.Actor.ID,
		Tags:      tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.reloadPost(ctx, in.Actor, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Decide(actor, policy.ActionRead, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}
	if err := s.annotateLikes(ctx, actor, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, string, error) {
	filter := repository.PostFilter{
		AuthorID:  in.AuthorID,
		Published: in.Published,
		TagName:   in.TagName,
		Viewer:    in.Actor,
	}
	posts, next, err := s.postRepo.List(ctx, filter, in.Page)
	if err != nil {
		return nil, "", err
	}
	if err := s.annotateLikes(ctx, in.Actor, posts...); err != nil {
		return nil, "", err
	}
	return posts, next, nil
}

func (s *PostService) SearchPosts(ctx context.Context, actor policy.Actor, query string, page pagination.Page) ([]*models.Post, string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, "", models.NewValidationError("Search query is required")
	}
	filter := repository.PostFilter{
		Search: query,
		Viewer: actor,
	}
	posts, next, err := s.postRepo.List(ctx, filter, page)
	if err != nil {
		return nil, "", err
	}
	if err := s.annotateLikes(ctx, actor, posts...); err != nil {
		return nil, "", err
	}
	return posts, next, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, models.NewValidationError("Body cannot be empty")
		}
		if len(*in.Body) > maxBodyLen {
			return nil, models.NewValidationError("Body too long (max 50000 characters)")
		}
	}
	tagCount := 0
	if in.TagNames != nil {
		if err := validateTagNames(*in.TagNames); err != nil {
			return nil, err
		}
		tagCount += len(*in.TagNames)
	}
	if in.TagIDs != nil {
		tagCount += len(*in.TagIDs)
	}
	if tagCount > maxPostTags {
		return nil, models.NewValidationError(fmt.Sprintf("A post cannot carry more than %d tags", maxPostTags))
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if d := policy.Decide(in.Actor, policy.ActionUpdate, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return nil, models.NewForbiddenError(d.Reason)
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Body != nil {
		post.Body = *in.Body
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if in.TagNames != nil || in.TagIDs != nil {
		var names []string
		var ids []uint
		if in.TagNames != nil {
			names = *in.TagNames
		}
		if in.TagIDs != nil {
			ids = *in.TagIDs
		}
		tags, err := s.resolveTags(ctx, names, ids)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}
	return s.reloadPost(ctx, in.Actor, post.ID)
}

// reloadPost rereads a post after a mutation and fills its like fields.
func (s *PostService) reloadPost(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.annotateLikes(ctx, actor, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ToggleLike flips the actor's like on a post and reports the new state
// alongside the post's fresh like count.
func (s *PostService) ToggleLike(ctx context.Context, actor policy.Actor, postID uint) (bool, int64, error) {
	if d := policy.Decide(actor, policy.ActionCreate, policy.LikeRef{OwnerID: actor.ID}); !d.Allowed {
		return false, 0, models.NewForbiddenError(d.Reason)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	if d := policy.Decide(actor, policy.ActionRead, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return false, 0, models.NewForbiddenError(d.Reason)
	}

	liked, err := s.likeRepo.Toggle(ctx, actor.ID, post.ID)
	if err != nil {
		return false, 0, err
	}
	count, err := s.likeRepo.CountForPost(ctx, post.ID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// annotateLikes fills the per-request like fields on posts. Counts are
// always fresh; is_liked only carries meaning for an authenticated viewer.
func (s *PostService) annotateLikes(ctx context.Context, actor policy.Actor, posts ...*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	counts, err := s.likeRepo.CountForPosts(ctx, ids)
	if err != nil {
		return err
	}
	var liked map[uint]bool
	if actor.Authenticated() {
		liked, err = s.likeRepo.LikedByUser(ctx, actor.ID, ids)
		if err != nil {
			return err
		}
	}
	for _, p := range posts {
		p.LikesCount = counts[p.ID]
		p.Liked = liked[p.ID]
	}
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if d := policy.Decide(in.Actor, policy.ActionDelete, policy.PostRef{AuthorID: post.AuthorID, Published: post.Published}); !d.Allowed {
		return models.NewForbiddenError(d.Reason)
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

// resolveTags turns a mix of tag names and tag IDs into concrete rows.
// Names are upserted, IDs must already exist. The result is deduplicated
// by ID so the same tag referenced by name and by ID attaches once.
func (s *PostService) resolveTags(ctx context.Context, names []string, ids []uint) ([]models.Tag, error) {
	seen := make(map[uint]bool)
	var tags []models.Tag

	for _, name := range names {
		tag, err := s.tagRepo.UpsertByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tags = append(tags, *tag)
		}
	}

	if len(ids) > 0 {
		found, err := s.tagRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		foundByID := make(map[uint]models.Tag, len(found))
		for _, t := range found {
			foundByID[t.ID] = t
		}
		for _, id := range ids {
			tag, ok := foundByID[id]
			if !ok {
				return nil, models.NewDanglingReferenceError("tag", id)
			}
			if !seen[id] {
				seen[id] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

func validateTagNames(names []string) error {
	for _, name := range names {
		canonical := models.CanonicalTagName(name)
		if canonical == "" {
			return models.NewValidationError("Tag name cannot be empty")
		}
		if len(canonical) > maxTagLen {
			return models.NewValidationError("Tag name too long (max 64 characters)")
		}
	}
	return nil
}
