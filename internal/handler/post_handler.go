package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arahman-dev/blogfolio-api/internal/middleware"
	"github.com/arahman-dev/blogfolio-api/internal/service"
	appErrors "github.com/arahman-dev/blogfolio-api/pkg/errors"
	"github.com/arahman-dev/blogfolio-api/pkg/response"
)

// PostHandler wires HTTP endpoints to the post service.
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler creates a new handler.
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// List godoc
// @Summary List posts
// @Description List published posts; pass published=false to include drafts
// @Tags Posts
// @Produce json
// @Param published query bool false "Filter by published state"
// @Success 200 {object} response.Envelope
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	includeDrafts := c.Query("published") == "false"

	posts, err := h.service.List(c.Request.Context(), includeDrafts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, posts, nil)
}

// Get godoc
// @Summary Get post by slug
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{slug} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, post, nil)
}

// Create godoc
// @Summary Create post
// @Description Create a post from a multipart form with an optional image
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Post title"
// @Param content formData string true "Post content"
// @Param published formData bool false "Publish immediately"
// @Param image formData file false "Cover image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.CreatePostRequest{
		Title:     c.PostForm("title"),
		Content:   c.PostForm("content"),
		Published: parseFormBool(c.PostForm("published")),
	}

	image, closeImage, err := openImageField(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}
	req.Image = image

	post, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, post)
}

// Update godoc
// @Summary Update post
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.UpdatePostRequest{
		Title:     c.PostForm("title"),
		Content:   c.PostForm("content"),
		Published: parseFormBool(c.PostForm("published")),
	}

	image, closeImage, err := openImageField(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}
	req.Image = image

	post, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, post, nil)
}

// Delete godoc
// @Summary Delete post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// openImageField extracts the optional "image" multipart field. The returned
// close function is nil when no file was sent.
func openImageField(c *gin.Context) (*service.ImageUpload, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil, nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read image upload")
	}

	upload := &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentTypeOf(header),
		Size:        header.Size,
		Reader:      file,
	}
	return upload, func() { file.Close() }, nil
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func parseFormBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}
