package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	actor := s.actor(c)

	var req struct {
		Title     string   `json:"title"`
		Body      string   `json:"body"`
		Published bool     `json:"published"`
		AuthorID  *uint    `json:"author_id,omitempty"`
		Tags      []string `json:"tags,omitempty"`
		TagIDs    []uint   `json:"tag_ids,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Actor:     actor,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
		AuthorID:  req.AuthorID,
		TagNames:  req.Tags,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	page, err := s.parsePage(c)
	if err != nil {
		return nil
	}

	in := service.ListPostsInput{
		Actor:   actor,
		TagName: c.Query("tag"),
		Page:    page,
	}
	if c.Query("author_id") != "" {
		authorID := uint(c.QueryInt("author_id"))
		if authorID == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid author_id"))
		}
		in.AuthorID = &authorID
	}
	if c.Query("author") == "me" {
		if !actor.Authenticated() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Authentication required"))
		}
		in.AuthorID = &actor.ID
	}
	if c.Query("published") != "" {
		published := c.QueryBool("published")
		in.Published = &published
	}

	posts, next, err := s.postService.ListPosts(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listResponse{Items: posts, NextCursor: next})
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	page, err := s.parsePage(c)
	if err != nil {
		return nil
	}

	posts, next, err := s.postService.SearchPosts(c.Context(), actor, c.Query("q"), page)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listResponse{Items: posts, NextCursor: next})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), s.optionalActor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     *string   `json:"title"`
		Body      *string   `json:"body"`
		Published *bool     `json:"published"`
		Tags      *[]string `json:"tags"`
		TagIDs    *[]uint   `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Actor:     s.actor(c),
		PostID:    id,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
		TagNames:  req.Tags,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		Actor:  s.actor(c),
		PostID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	actor := s.actor(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, count, err := s.postService.ToggleLike(c.Context(), actor, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	status := "unliked"
	if liked {
		status = "liked"
	}
	return c.JSON(fiber.Map{
		"status":      status,
		"likes_count": count,
	})
}
