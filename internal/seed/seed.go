// Package seed populates the database with demo users, posts, and comments.
package seed

import (
	"fmt"
	"time"

	"pinboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the login password for every seeded user.
const DemoPassword = "password123"

// Options controls how much demo data Run generates.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
}

// DefaultOptions returns a small board worth of demo data.
func DefaultOptions() Options {
	return Options{Users: 8, Posts: 30, CommentsPerPost: 3}
}

// Run inserts demo data. It is additive: seeded usernames carry a numeric
// suffix so re-running against an existing database does not collide.
func Run(db *gorm.DB, opts Options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			PasswordHash: string(hash),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	// Stagger creation times so the most-recent-first listing has a stable,
	// visible order.
	base := time.Now().Add(-time.Duration(opts.Posts) * time.Hour)
	for i := 0; i < opts.Posts; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		post := &models.Post{
			Title:     gofakeit.Sentence(gofakeit.Number(3, 7)),
			Content:   gofakeit.Paragraph(1, gofakeit.Number(2, 5), gofakeit.Number(5, 12), " "),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}

		for j := 0; j < gofakeit.Number(0, opts.CommentsPerPost); j++ {
			commenter := users[gofakeit.Number(0, len(users)-1)]
			comment := &models.Comment{
				Content:   gofakeit.Sentence(gofakeit.Number(4, 12)),
				AuthorID:  commenter.ID,
				PostID:    post.ID,
				CreatedAt: post.CreatedAt.Add(time.Duration(j+1) * time.Minute),
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	return nil
}
