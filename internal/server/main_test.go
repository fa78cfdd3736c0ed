package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/pagination"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// newTestServer wires a Server against an in-memory SQLite database.
// Metrics and Redis stay off so tests do not touch global registries.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// In-memory sqlite is per-connection; pin the pool to one so every
	// request sees the same database.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:               testJWTSecret,
		Env:                     "test",
		DefaultPageSize:         20,
		MaxPageSize:             100,
		BookmarkDuplicatePolicy: config.BookmarkPolicyIdempotent,
	}

	s := &Server{
		config: cfg,
		db:     db,
		pageOpts: pagination.Options{
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
		},
		postRepo:     repository.NewPostRepository(db),
		tagRepo:      repository.NewTagRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		bookmarkRepo: repository.NewBookmarkRepository(db),
		likeRepo:     repository.NewLikeRepository(db),
	}
	s.postService = service.NewPostService(s.postRepo, s.tagRepo, s.likeRepo)
	s.tagService = service.NewTagService(s.tagRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.bookmarkService = service.NewBookmarkService(s.bookmarkRepo, s.postRepo, cfg.BookmarkDuplicatePolicy)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// token issues a signed bearer token for the given user.
func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":  "quill-api",
		"aud":  "quill-client",
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
