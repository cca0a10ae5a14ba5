package service

import (
	"context"
	"log/slog"

	"pinboard/internal/auth"
	"pinboard/internal/middleware"
	"pinboard/internal/models"
	"pinboard/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	// enforceOwnership restricts deletion to the comment's author when set.
	// Historically any authenticated user could delete any comment.
	enforceOwnership bool
}

type AddCommentInput struct {
	Identity *auth.Identity
	PostID   uint
	Content  string
}

type DeleteCommentInput struct {
	Identity  *auth.Identity
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	enforceOwnership bool,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		enforceOwnership: enforceOwnership,
	}
}

func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.Identity == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.Identity.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments oldest first. Like the home listing,
// infrastructure failures degrade to an empty result with an operator log.
func (s *CommentService) ListComments(ctx context.Context, postID uint) []*models.Comment {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "listing comments failed",
			slog.Any("post_id", postID),
			slog.String("error", err.Error()))
		return []*models.Comment{}
	}
	return comments
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	if in.Identity == nil {
		return models.NewUnauthorizedError("Authentication required")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if s.enforceOwnership && comment.AuthorID != in.Identity.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}
