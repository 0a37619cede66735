package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arahman-dev/blogfolio-api/internal/middleware"
	"github.com/arahman-dev/blogfolio-api/internal/models"
	"github.com/arahman-dev/blogfolio-api/internal/service"
	appErrors "github.com/arahman-dev/blogfolio-api/pkg/errors"
	"github.com/arahman-dev/blogfolio-api/pkg/response"
)

// PortfolioHandler wires HTTP endpoints to the portfolio service.
type PortfolioHandler struct {
	service *service.PortfolioService
}

// NewPortfolioHandler creates a new handler.
func NewPortfolioHandler(svc *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: svc}
}

// Hero godoc
// @Summary Get hero banner
// @Tags Portfolio
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /portfolio/hero [get]
func (h *PortfolioHandler) Hero(c *gin.Context) {
	hero, err := h.service.Hero(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hero, nil)
}

// UpsertHero godoc
// @Summary Replace hero banner
// @Tags Portfolio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /portfolio/hero [put]
func (h *PortfolioHandler) UpsertHero(c *gin.Context) {
	var req service.HeroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hero payload"))
		return
	}

	hero, err := h.service.UpsertHero(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hero, nil)
}

// Projects lists active project cards.
func (h *PortfolioHandler) Projects(c *gin.Context) {
	projects, err := h.service.Projects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projects, nil)
}

// CreateProject appends a project card.
func (h *PortfolioHandler) CreateProject(c *gin.Context) {
	var req service.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// UpdateProject modifies a project card.
func (h *PortfolioHandler) UpdateProject(c *gin.Context) {
	var req service.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// DeleteProject removes a project card.
func (h *PortfolioHandler) DeleteProject(c *gin.Context) {
	if err := h.service.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Skills lists active skill entries.
func (h *PortfolioHandler) Skills(c *gin.Context) {
	skills, err := h.service.Skills(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skills, nil)
}

// CreateSkill appends a skill entry.
func (h *PortfolioHandler) CreateSkill(c *gin.Context) {
	var req service.SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid skill payload"))
		return
	}

	skill, err := h.service.CreateSkill(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, skill)
}

// UpdateSkill modifies a skill entry.
func (h *PortfolioHandler) UpdateSkill(c *gin.Context) {
	var req service.SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid skill payload"))
		return
	}

	skill, err := h.service.UpdateSkill(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skill, nil)
}

// DeleteSkill removes a skill entry.
func (h *PortfolioHandler) DeleteSkill(c *gin.Context) {
	if err := h.service.DeleteSkill(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Education lists active education entries.
func (h *PortfolioHandler) Education(c *gin.Context) {
	entries, err := h.service.Education(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// CreateEducation appends an education entry.
func (h *PortfolioHandler) CreateEducation(c *gin.Context) {
	var req service.EducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid education payload"))
		return
	}

	entry, err := h.service.CreateEducation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateEducation modifies an education entry.
func (h *PortfolioHandler) UpdateEducation(c *gin.Context) {
	var req service.EducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid education payload"))
		return
	}

	entry, err := h.service.UpdateEducation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteEducation removes an education entry.
func (h *PortfolioHandler) DeleteEducation(c *gin.Context) {
	if err := h.service.DeleteEducation(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Contact returns the active contact card.
func (h *PortfolioHandler) Contact(c *gin.Context) {
	contact, err := h.service.Contact(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// UpsertContact replaces the active contact card.
func (h *PortfolioHandler) UpsertContact(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}

	contact, err := h.service.UpsertContact(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// Comments godoc
// @Summary List comments
// @Description Approved comments for everyone; admins also see pending ones
// @Tags Portfolio
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /portfolio/comments [get]
func (h *PortfolioHandler) Comments(c *gin.Context) {
	includeUnapproved := false
	if claims, ok := middleware.CurrentUser(c); ok && claims.Role == models.RoleAdmin {
		includeUnapproved = true
	}

	comments, err := h.service.Comments(c.Request.Context(), includeUnapproved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

// CreateComment stores a visitor comment pending moderation.
func (h *PortfolioHandler) CreateComment(c *gin.Context) {
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// ApproveComment marks a comment as visible.
func (h *PortfolioHandler) ApproveComment(c *gin.Context) {
	if err := h.service.ApproveComment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "comment approved"}, nil)
}

// DeleteComment removes a comment.
func (h *PortfolioHandler) DeleteComment(c *gin.Context) {
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Resume godoc
// @Summary Download résumé PDF
// @Description Render the active portfolio content as a PDF résumé
// @Tags Portfolio
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /portfolio/resume [get]
func (h *PortfolioHandler) Resume(c *gin.Context) {
	data, err := h.service.Resume(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resume.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
