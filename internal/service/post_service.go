package service

import (
	"context"
	"log/slog"

	"pinboard/internal/auth"
	"pinboard/internal/middleware"
	"pinboard/internal/models"
	"pinboard/internal/repository"
)

// HomePageLimit caps the most-recent-first listing on the home page.
const HomePageLimit = 20

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	Identity *auth.Identity
	Title    string
	Content  string
}

type UpdatePostInput struct {
	Identity *auth.Identity
	PostID   uint
	Title    string
	Content  string
}

type DeletePostInput struct {
	Identity *auth.Identity
	PostID   uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Identity == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: in.Identity.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListRecent returns the home-page listing. Infrastructure failures are
// logged for operators and degrade to an empty listing rather than an error;
// the board stays up even when the store is unreachable.
func (s *PostService) ListRecent(ctx context.Context) []*models.Post {
	posts, err := s.postRepo.ListRecent(ctx, HomePageLimit)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "listing recent posts failed",
			slog.String("error", err.Error()))
		return []*models.Post{}
	}
	return posts
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Identity == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(post, in.Identity) {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, in.PostID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	if in.Identity == nil {
		return models.NewUnauthorizedError("Authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if !auth.CanModify(post, in.Identity) {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}
