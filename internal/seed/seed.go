// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAuthors   int
	NumPosts     int
	NumComments  int
	NumBookmarks int
	NumLikes     int
}

var tagPool = []string{
	"go", "databases", "testing", "performance", "security",
	"web", "cli", "devops", "tutorial", "opinion",
	"design", "concurrency", "networking", "tooling", "career",
}

// Seeder populates the database with fake content.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// ClearAll wipes seeded content. Order matters: children before posts.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, stmt := range []string{
		"DELETE FROM likes",
		"DELETE FROM bookmarks",
		"DELETE FROM comments",
		"DELETE FROM post_tags",
		"DELETE FROM posts",
		"DELETE FROM tags",
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}
	return nil
}

// Run seeds tags, posts, comments, bookmarks and likes. Author IDs are drawn
// from 1..NumAuthors; identities live in the external identity service,
// so only the numeric references are fabricated here.
func (s *Seeder) Run(opts Options) error {
	if opts.NumAuthors <= 0 {
		opts.NumAuthors = 1
	}

	tags, err := s.seedTags()
	if err != nil {
		return err
	}

	posts, err := s.seedPosts(opts, tags)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	if err := s.seedComments(opts, posts); err != nil {
		return err
	}
	if err := s.seedBookmarks(opts, posts); err != nil {
		return err
	}
	return s.seedLikes(opts, posts)
}

func (s *Seeder) seedTags() ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagPool))
	for _, name := range tagPool {
		tag := models.Tag{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("seeding tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	log.Printf("Seeded %d tags", len(tags))
	return tags, nil
}

func (s *Seeder) seedPosts(opts Options, tags []models.Tag) ([]models.Post, error) {
	posts := make([]models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		post := models.Post{
			Title:     gofakeit.Sentence(5),
			Body:      gofakeit.Paragraph(2, 4, 8, "\n\n"),
			AuthorID:  uint(rand.Intn(opts.NumAuthors) + 1),
			Published: rand.Float32() < 0.8, // keep some drafts around
		}

		n := rand.Intn(4)
		picked := rand.Perm(len(tags))[:n]
		for _, idx := range picked {
			post.Tags = append(post.Tags, tags[idx])
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

func (s *Seeder) seedComments(opts Options, posts []models.Post) error {
	var roots []models.Comment
	for i := 0; i < opts.NumComments; i++ {
		comment := models.Comment{
			PostID:   posts[rand.Intn(len(posts))].ID,
			AuthorID: uint(rand.Intn(opts.NumAuthors) + 1),
			Body:     gofakeit.Sentence(rand.Intn(15) + 3),
		}

		// Thread roughly a quarter of comments under an existing root
		// on the same post.
		if len(roots) > 0 && rand.Float32() < 0.25 {
			parent := roots[rand.Intn(len(roots))]
			comment.PostID = parent.PostID
			comment.ParentID = &parent.ID
		}

		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("seeding comment: %w", err)
		}
		if comment.ParentID == nil {
			roots = append(roots, comment)
		}
	}
	log.Printf("Seeded %d comments", opts.NumComments)
	return nil
}

func (s *Seeder) seedBookmarks(opts Options, posts []models.Post) error {
	created := 0
	for i := 0; i < opts.NumBookmarks; i++ {
		bm := models.Bookmark{
			UserID: uint(rand.Intn(opts.NumAuthors) + 1),
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		// The (user, post) unique index drops random duplicates.
		err := s.db.Where("user_id = ? AND post_id = ?", bm.UserID, bm.PostID).
			FirstOrCreate(&bm).Error
		if err != nil {
			return fmt.Errorf("seeding bookmark: %w", err)
		}
		created++
	}
	log.Printf("Seeded %d bookmarks", created)
	return nil
}

func (s *Seeder) seedLikes(opts Options, posts []models.Post) error {
	created := 0
	for i := 0; i < opts.NumLikes; i++ {
		like := models.Like{
			UserID: uint(rand.Intn(opts.NumAuthors) + 1),
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		err := s.db.Where("user_id = ? AND post_id = ?", like.UserID, like.PostID).
			FirstOrCreate(&like).Error
		if err != nil {
			return fmt.Errorf("seeding like: %w", err)
		}
		created++
	}
	log.Printf("Seeded %d likes", created)
	return nil
}
