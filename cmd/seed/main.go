// Command main runs the database seeder for Quill.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	numAuthors := flag.Int("authors", 20, "Number of distinct author IDs to reference")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numComments := flag.Int("comments", 500, "Number of comments to create")
	numBookmarks := flag.Int("bookmarks", 300, "Number of bookmarks to attempt")
	numLikes := flag.Int("likes", 600, "Number of likes to attempt")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d authors, %d posts, %d comments, %d bookmarks, clean=%v\n",
		*numAuthors, *numPosts, *numComments, *numBookmarks, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(seed.Options{
		NumAuthors:   *numAuthors,
		NumPosts:     *numPosts,
		NumComments:  *numComments,
		NumBookmarks: *numBookmarks,
		NumLikes:     *numLikes,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
