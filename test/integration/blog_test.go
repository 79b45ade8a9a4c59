package integration_test

import (
	"net/http"
	"testing"

	"rencontre_backend/internal/models"
	"rencontre_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlog_PublishCommentRate(t *testing.T) {
	ts := GetTestServer(t)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, models.UserRoleAdmin)
	userToken, _ := helpers.CreateAndLoginUser(t, ts, models.UserRoleUser)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/blog/categories", adminToken, map[string]string{"name": "Conseils Écrits"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var category struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	decode(t, body, &category)
	assert.Equal(t, "conseils-ecrits", category.Slug)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/blog/posts", adminToken, map[string]interface{}{
		"title":        "Mon Premier Article de Test",
		"content":      "Un contenu assez court pour une minute de lecture.",
		"category_ids": []string{category.ID},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var post struct {
		ID          string `json:"id"`
		Slug        string `json:"slug"`
		Status      string `json:"status"`
		ReadingTime int    `json:"reading_time"`
	}
	decode(t, body, &post)
	assert.Equal(t, "mon-premier-article-de-test", post.Slug)
	assert.Equal(t, "draft", post.Status)
	assert.Equal(t, 1, post.ReadingTime)

	// черновик не виден публично
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/blog/posts/"+post.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/blog/posts/"+post.ID+"/publish", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "published_at")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/blog/posts", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, post.Slug)
	assert.Contains(t, body, `"post_count":1`)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/blog/posts/"+post.Slug+"/comments", userToken, map[string]string{"content": "Très utile, merci"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var comment struct {
		ID         string `json:"id"`
		IsApproved bool   `json:"is_approved"`
	}
	decode(t, body, &comment)
	assert.False(t, comment.IsApproved)

	for _, score := range []int{2, 4} {
		res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/blog/posts/"+post.Slug+"/ratings", userToken, map[string]int{"score": score})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
	}
	assert.Contains(t, body, `"ratings_count":1`)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/blog/posts/"+post.Slug+"/ratings", userToken, map[string]int{"score": 6})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/blog/comments/"+comment.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/blog/posts/"+post.Slug, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var detail struct {
		Post struct {
			ViewsCount int `json:"views_count"`
		} `json:"post"`
		Comments      []struct{} `json:"comments"`
		AverageRating float64    `json:"average_rating"`
	}
	decode(t, body, &detail)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, 4.0, detail.AverageRating)
	assert.Equal(t, 1, detail.Post.ViewsCount)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/blog/categories/"+category.Slug+"/posts", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, post.Slug)
}

func TestBlog_AdminOnly(t *testing.T) {
	ts := GetTestServer(t)
	userToken, _ := helpers.CreateAndLoginUser(t, ts, models.UserRoleUser)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/blog/posts", userToken, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/blog/posts/anything/comments", "", map[string]string{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
