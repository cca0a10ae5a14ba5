package server

import (
	"pinboard/internal/models"
	"pinboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET / and lists the most recent posts.
func (s *Server) Home(c *fiber.Ctx) error {
	posts := s.postService.ListRecent(c.Context())
	return c.JSON(fiber.Map{
		"posts": posts,
	})
}

// ShowPost handles GET /post/:id and returns the post with its comments.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	comments := s.commentService.ListComments(ctx, id)

	return c.JSON(fiber.Map{
		"post":     post,
		"comments": comments,
	})
}

// CreatePost handles POST /create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Identity: s.identity(c),
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPost handles POST /edit/:postId
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Identity: s.identity(c),
		PostID:   postID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles POST /delete/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		Identity: s.identity(c),
		PostID:   postID,
	}); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}
