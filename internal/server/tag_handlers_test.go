package server

import (
	"fmt"
	"net/http"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTagEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	alice := token(t, 1, "user")
	bob := token(t, 2, "user")

	t.Run("anonymous create forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", "", map[string]any{"name": "go"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("concurrent-style creates converge on one tag", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": "Go"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var first models.Tag
		decodeJSON(t, resp, &first)
		assert.Equal(t, "go", first.Name)

		resp = doJSON(t, app, http.MethodPost, "/api/tags", bob, map[string]any{"name": "  GO "})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var second models.Tag
		decodeJSON(t, resp, &second)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestUpdateTagEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	alice := token(t, 1, "user")

	resp := doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": "go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var goTag models.Tag
	decodeJSON(t, resp, &goTag)

	resp = doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": "rust"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rustTag models.Tag
	decodeJSON(t, resp, &rustTag)

	t.Run("rename", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/tags/%d", goTag.ID), alice,
			map[string]any{"name": "Golang"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var renamed models.Tag
		decodeJSON(t, resp, &renamed)
		assert.Equal(t, "golang", renamed.Name)
	})

	t.Run("rename onto an existing name conflicts", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/tags/%d", goTag.ID), alice,
			map[string]any{"name": "Rust"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		var body models.ErrorResponse
		decodeJSON(t, resp, &body)
		assert.Equal(t, models.CodeConflict, body.Code)
	})
}

func TestDeleteTagEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	alice := token(t, 1, "user")
	admin := token(t, 9, "admin")

	resp := doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": "go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag models.Tag
	decodeJSON(t, resp, &tag)

	post := seedPublishedPost(t, app, alice)
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/posts/%d", post.ID), alice,
		map[string]any{"tags": []string{"go"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	url := fmt.Sprintf("/api/tags/%d", tag.ID)

	t.Run("regular user cannot delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, url, alice, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin deletes and posts are detached", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, url, admin, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got models.Post
		decodeJSON(t, resp, &got)
		assert.Empty(t, got.Tags)
	})
}

func TestListTagsEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	alice := token(t, 1, "user")

	for _, name := range []string{"go", "rust", "zig"} {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", alice, map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Items []models.Tag `json:"items"`
	}
	decodeJSON(t, resp, &body)
	assert.Len(t, body.Items, 3)
}
