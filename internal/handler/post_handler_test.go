package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arahman-dev/blogfolio-api/internal/middleware"
	"github.com/arahman-dev/blogfolio-api/internal/models"
	"github.com/arahman-dev/blogfolio-api/internal/service"
)

type stubPostRepo struct {
	posts      map[string]*models.Post
	nextID     int
	lastFilter models.PostFilter
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: map[string]*models.Post{}, nextID: 1}
}

func (m *stubPostRepo) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	m.lastFilter = filter
	var out []models.Post
	for _, p := range m.posts {
		if filter.PublishedOnly && !p.Published {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *stubPostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *stubPostRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = "p" + string(rune('0'+m.nextID))
	m.nextID++
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *stubPostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.posts, id)
	return nil
}

type stubImageStore struct {
	objects map[string][]byte
}

func (m *stubImageStore) Put(ctx context.Context, object, contentType string, reader io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[object] = data
	return "http://storage.local/images/" + object, nil
}

func newPostRouter(t *testing.T, repo *stubPostRepo, images *stubImageStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewPostService(repo, images, validator.New(), zap.NewNop())
	h := NewPostHandler(svc)

	asAdmin := func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.AccessClaims{UserID: "admin-1", Email: "admin@x.com", Role: models.RoleAdmin})
	}

	r := gin.New()
	posts := r.Group("/posts")
	posts.GET("", h.List)
	posts.GET("/:slug", h.Get)
	posts.POST("", asAdmin, h.Create)
	posts.PUT("/:id", asAdmin, h.Update)
	posts.DELETE("/:id", asAdmin, h.Delete)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, imageName string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPostHandlerCreateMultipart(t *testing.T) {
	repo := newStubPostRepo()
	images := &stubImageStore{}
	r := newPostRouter(t, repo, images)

	body, contentType := multipartBody(t, map[string]string{
		"title":     "Hello World",
		"content":   "first post",
		"published": "true",
	}, "cover.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "hello-world", envelope.Data.Slug)
	assert.Equal(t, "admin-1", envelope.Data.AuthorID)
	require.NotNil(t, envelope.Data.ImageURL)
	assert.Contains(t, *envelope.Data.ImageURL, "http://storage.local/images/")
	assert.Len(t, images.objects, 1)
}

func TestPostHandlerCreateWithoutImage(t *testing.T) {
	repo := newStubPostRepo()
	r := newPostRouter(t, repo, &stubImageStore{})

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Draft",
		"content": "wip",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.ImageURL)
	assert.False(t, envelope.Data.Published)
}

func TestPostHandlerCreateMissingTitle(t *testing.T) {
	r := newPostRouter(t, newStubPostRepo(), &stubImageStore{})

	body, contentType := multipartBody(t, map[string]string{"content": "text"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestPostHandlerListHidesDraftsByDefault(t *testing.T) {
	repo := newStubPostRepo()
	repo.posts["p1"] = &models.Post{ID: "p1", Title: "Live", Slug: "live", Published: true}
	repo.posts["p2"] = &models.Post{ID: "p2", Title: "Draft", Slug: "draft", Published: false}
	r := newPostRouter(t, repo, &stubImageStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.lastFilter.PublishedOnly)
	assert.NotContains(t, w.Body.String(), "Draft")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?published=false", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, repo.lastFilter.PublishedOnly)
	assert.Contains(t, w.Body.String(), "Draft")
}

func TestPostHandlerGetBySlug(t *testing.T) {
	repo := newStubPostRepo()
	repo.posts["p1"] = &models.Post{ID: "p1", Title: "Live", Slug: "live", Published: true}
	r := newPostRouter(t, repo, &stubImageStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostHandlerDelete(t *testing.T) {
	repo := newStubPostRepo()
	repo.posts["p1"] = &models.Post{ID: "p1", Title: "Live", Slug: "live", AuthorID: "admin-1"}
	r := newPostRouter(t, repo, &stubImageStore{})

	req := httptest.NewRequest(http.MethodDelete, "/posts/p1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.posts)
}
