// Command seed fills the database with demo users, posts, and comments.
package main

import (
	"flag"
	"log"

	"pinboard/internal/config"
	"pinboard/internal/database"
	"pinboard/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of demo users")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "number of demo posts")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "max comments per post")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users and %d posts (demo password: %q)",
		opts.Users, opts.Posts, seed.DemoPassword)
}
