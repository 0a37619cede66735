package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arahman-dev/blogfolio-api/internal/middleware"
	"github.com/arahman-dev/blogfolio-api/internal/models"
	"github.com/arahman-dev/blogfolio-api/internal/service"
	"github.com/arahman-dev/blogfolio-api/pkg/export"
)

type stubPortfolioRepo struct {
	hero     *models.Hero
	projects []models.Project
	skills   []models.Skill
	entries  []models.Education
	contact  *models.Contact
	comments []models.Comment
	nextID   int
}

func (m *stubPortfolioRepo) id() string {
	m.nextID++
	return "pf" + strconv.Itoa(m.nextID)
}

func (m *stubPortfolioRepo) ActiveHero(ctx context.Context) (*models.Hero, error) {
	if m.hero == nil {
		return nil, sql.ErrNoRows
	}
	return m.hero, nil
}

func (m *stubPortfolioRepo) ReplaceHero(ctx context.Context, hero *models.Hero) error {
	hero.ID = m.id()
	hero.IsActive = true
	m.hero = hero
	return nil
}

func (m *stubPortfolioRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	return m.projects, nil
}

func (m *stubPortfolioRepo) CreateProject(ctx context.Context, project *models.Project) error {
	project.ID = m.id()
	project.DisplayOrder = len(m.projects) + 1
	m.projects = append(m.projects, *project)
	return nil
}

func (m *stubPortfolioRepo) UpdateProject(ctx context.Context, project *models.Project) error {
	for i := range m.projects {
		if m.projects[i].ID == project.ID {
			project.DisplayOrder = m.projects[i].DisplayOrder
			m.projects[i] = *project
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) DeleteProject(ctx context.Context, id string) error {
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return m.skills, nil
}

func (m *stubPortfolioRepo) CreateSkill(ctx context.Context, skill *models.Skill) error {
	skill.ID = m.id()
	skill.DisplayOrder = len(m.skills) + 1
	m.skills = append(m.skills, *skill)
	return nil
}

func (m *stubPortfolioRepo) UpdateSkill(ctx context.Context, skill *models.Skill) error {
	for i := range m.skills {
		if m.skills[i].ID == skill.ID {
			m.skills[i] = *skill
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) DeleteSkill(ctx context.Context, id string) error {
	for i := range m.skills {
		if m.skills[i].ID == id {
			m.skills = append(m.skills[:i], m.skills[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) ListEducation(ctx context.Context) ([]models.Education, error) {
	return m.entries, nil
}

func (m *stubPortfolioRepo) CreateEducation(ctx context.Context, entry *models.Education) error {
	entry.ID = m.id()
	entry.DisplayOrder = len(m.entries) + 1
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *stubPortfolioRepo) UpdateEducation(ctx context.Context, entry *models.Education) error {
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = *entry
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) DeleteEducation(ctx context.Context, id string) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) ActiveContact(ctx context.Context) (*models.Contact, error) {
	if m.contact == nil {
		return nil, sql.ErrNoRows
	}
	return m.contact, nil
}

func (m *stubPortfolioRepo) ReplaceContact(ctx context.Context, contact *models.Contact) error {
	contact.ID = m.id()
	contact.IsActive = true
	m.contact = contact
	return nil
}

func (m *stubPortfolioRepo) ListComments(ctx context.Context, approvedOnly bool) ([]models.Comment, error) {
	if !approvedOnly {
		return m.comments, nil
	}
	var out []models.Comment
	for _, c := range m.comments {
		if c.Approved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *stubPortfolioRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = m.id()
	comment.Approved = false
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *stubPortfolioRepo) ApproveComment(ctx context.Context, id string) error {
	for i := range m.comments {
		if m.comments[i].ID == id {
			m.comments[i].Approved = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *stubPortfolioRepo) DeleteComment(ctx context.Context, id string) error {
	for i := range m.comments {
		if m.comments[i].ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type stubRenderer struct {
	last export.Resume
}

func (m *stubRenderer) Render(r export.Resume) ([]byte, error) {
	m.last = r
	return []byte("%PDF-1.4 stub"), nil
}

func newPortfolioRouter(t *testing.T, repo *stubPortfolioRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewPortfolioService(repo, nil, &stubRenderer{}, validator.New(), zap.NewNop())
	h := NewPortfolioHandler(svc)

	asAdmin := func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.AccessClaims{UserID: "admin-1", Role: models.RoleAdmin})
	}

	r := gin.New()
	pf := r.Group("/portfolio")
	pf.GET("/hero", h.Hero)
	pf.PUT("/hero", asAdmin, h.UpsertHero)
	pf.GET("/skills", h.Skills)
	pf.POST("/skills", asAdmin, h.CreateSkill)
	pf.GET("/comments", h.Comments)
	pf.GET("/comments/admin", asAdmin, h.Comments)
	pf.POST("/comments", h.CreateComment)
	pf.PUT("/comments/:id/approve", asAdmin, h.ApproveComment)
	pf.DELETE("/comments/:id", asAdmin, h.DeleteComment)
	pf.GET("/resume", h.Resume)
	return r
}

func TestPortfolioHandlerHeroLifecycle(t *testing.T) {
	repo := &stubPortfolioRepo{}
	r := newPortfolioRouter(t, repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/hero", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/portfolio/hero", jsonBody(t, map[string]string{
		"heading":    "Hi, I build things",
		"subheading": "Backend engineer",
		"cta_text":   "Read the blog",
		"cta_link":   "https://example.com/blog",
	}))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/hero", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hi, I build things")
}

func TestPortfolioHandlerSkillValidation(t *testing.T) {
	r := newPortfolioRouter(t, &stubPortfolioRepo{})

	w := postJSON(r, "/portfolio/skills", map[string]string{"name": "Go", "level": "Guru", "category": "Backend"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = postJSON(r, "/portfolio/skills", map[string]string{"name": "Go", "level": "Expert", "category": "Backend"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/skills", nil))
	assert.Contains(t, w.Body.String(), "Expert")
}

func TestPortfolioHandlerCommentModeration(t *testing.T) {
	repo := &stubPortfolioRepo{}
	r := newPortfolioRouter(t, repo)

	w := postJSON(r, "/portfolio/comments", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@x.com",
		"message": "Nice site",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.comments, 1)
	commentID := repo.comments[0].ID
	assert.False(t, repo.comments[0].Approved)

	// Anonymous readers only see approved comments.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/comments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Nice site")

	// Admins see the pending queue.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/comments/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nice site")

	req := httptest.NewRequest(http.MethodPut, "/portfolio/comments/"+commentID+"/approve", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/comments", nil))
	assert.Contains(t, w.Body.String(), "Nice site")

	req = httptest.NewRequest(http.MethodDelete, "/portfolio/comments/"+commentID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.comments)
}

func TestPortfolioHandlerCommentValidation(t *testing.T) {
	r := newPortfolioRouter(t, &stubPortfolioRepo{})

	w := postJSON(r, "/portfolio/comments", map[string]string{"name": "V", "email": "not-an-email", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPortfolioHandlerResume(t *testing.T) {
	repo := &stubPortfolioRepo{
		hero: &models.Hero{ID: "h1", Heading: "Jane Doe", Subheading: "Engineer", IsActive: true},
	}
	r := newPortfolioRouter(t, repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio/resume", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resume.pdf")
	assert.True(t, len(w.Body.Bytes()) > 0)
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	return &buf
}
