package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBookmark handles POST /api/bookmarks. Under the idempotent
// duplicate policy a repeat bookmark returns the existing row with 200
// instead of 201.
func (s *Server) CreateBookmark(c *fiber.Ctx) error {
	var req struct {
		PostID uint  `json:"post_id"`
		UserID *uint `json:"user_id,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	bm, created, err := s.bookmarkService.CreateBookmark(c.Context(), service.CreateBookmarkInput{
		Actor:  s.actor(c),
		PostID: req.PostID,
		UserID: req.UserID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	status := fiber.StatusCreated
	if !created {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(bm)
}

// GetBookmarks handles GET /api/bookmarks, listing the actor's own
// bookmarks only.
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	page, err := s.parsePage(c)
	if err != nil {
		return nil
	}

	bookmarks, next, err := s.bookmarkService.ListBookmarks(c.Context(), service.ListBookmarksInput{
		Actor: s.actor(c),
		Page:  page,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listResponse{Items: bookmarks, NextCursor: next})
}

// DeleteBookmark handles DELETE /api/bookmarks/:id
func (s *Server) DeleteBookmark(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookmarkService.DeleteBookmark(c.Context(), service.DeleteBookmarkInput{
		Actor:      s.actor(c),
		BookmarkID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
