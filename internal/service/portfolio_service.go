package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arahman-dev/blogfolio-api/internal/models"
	appErrors "github.com/arahman-dev/blogfolio-api/pkg/errors"
	"github.com/arahman-dev/blogfolio-api/pkg/export"
)

// Cache keys for the public portfolio reads. Mutations invalidate the whole
// portfolio namespace.
const (
	cacheKeyHero             = "portfolio:hero"
	cacheKeyProjects         = "portfolio:projects"
	cacheKeySkills           = "portfolio:skills"
	cacheKeyEducation        = "portfolio:education"
	cacheKeyContact          = "portfolio:contact"
	cacheKeyApprovedComments = "portfolio:comments:approved"
	cachePatternPortfolio    = "portfolio:*"
)

type portfolioRepository interface {
	ActiveHero(ctx context.Context) (*models.Hero, error)
	ReplaceHero(ctx context.Context, hero *models.Hero) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListSkills(ctx context.Context) ([]models.Skill, error)
	CreateSkill(ctx context.Context, skill *models.Skill) error
	UpdateSkill(ctx context.Context, skill *models.Skill) error
	DeleteSkill(ctx context.Context, id string) error
	ListEducation(ctx context.Context) ([]models.Education, error)
	CreateEducation(ctx context.Context, entry *models.Education) error
	UpdateEducation(ctx context.Context, entry *models.Education) error
	DeleteEducation(ctx context.Context, id string) error
	ActiveContact(ctx context.Context) (*models.Contact, error)
	ReplaceContact(ctx context.Context, contact *models.Contact) error
	ListComments(ctx context.Context, approvedOnly bool) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ApproveComment(ctx context.Context, id string) error
	DeleteComment(ctx context.Context, id string) error
}

type resumeRenderer interface {
	Render(r export.Resume) ([]byte, error)
}

// HeroRequest replaces the active hero banner.
type HeroRequest struct {
	Heading    string  `json:"heading" validate:"required"`
	Subheading string  `json:"subheading" validate:"required"`
	CTAText    string  `json:"cta_text" validate:"required"`
	CTALink    string  `json:"cta_link" validate:"required"`
	ImageURL   *string `json:"image_url"`
}

// ProjectRequest creates or updates a project card.
type ProjectRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ImageURL    *string  `json:"image_url"`
	GithubLink  string   `json:"github_link" validate:"required,url"`
	LiveLink    *string  `json:"live_link" validate:"omitempty,url"`
	Tags        []string `json:"tags"`
}

// SkillRequest creates or updates a skill entry.
type SkillRequest struct {
	Name     string `json:"name" validate:"required"`
	Level    string `json:"level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	Category string `json:"category" validate:"required"`
}

// EducationRequest creates or updates an education entry.
type EducationRequest struct {
	Institution string     `json:"institution" validate:"required"`
	Degree      string     `json:"degree" validate:"required"`
	Field       string     `json:"field" validate:"required"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Description *string    `json:"description"`
}

// ContactRequest replaces the active contact card.
type ContactRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	LinkedIn *string `json:"linkedin" validate:"omitempty,url"`
	Github   *string `json:"github" validate:"omitempty,url"`
	Twitter  *string `json:"twitter" validate:"omitempty,url"`
	Address  *string `json:"address"`
}

// CommentRequest submits a visitor comment for moderation.
type CommentRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=1"`
}

// PortfolioService handles the fixed portfolio sections, visitor comments and
// the résumé export.
type PortfolioService struct {
	repo      portfolioRepository
	cache     *CacheService
	resume    resumeRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(repo portfolioRepository, cache *CacheService, resume resumeRenderer, validate *validator.Validate, logger *zap.Logger) *PortfolioService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{repo: repo, cache: cache, resume: resume, validator: validate, logger: logger}
}

// Hero returns the active hero banner.
func (s *PortfolioService) Hero(ctx context.Context) (*models.Hero, error) {
	var cached models.Hero
	if hit, _ := s.cache.Get(ctx, cacheKeyHero, &cached); hit {
		return &cached, nil
	}
	hero, err := s.repo.ActiveHero(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hero not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hero")
	}
	s.cacheSet(ctx, cacheKeyHero, hero)
	return hero, nil
}

// UpsertHero replaces the active hero banner.
func (s *PortfolioService) UpsertHero(ctx context.Context, req HeroRequest) (*models.Hero, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid hero payload")
	}
	hero := &models.Hero{
		Heading:    req.Heading,
		Subheading: req.Subheading,
		CTAText:    req.CTAText,
		CTALink:    req.CTALink,
		ImageURL:   req.ImageURL,
	}
	if err := s.repo.ReplaceHero(ctx, hero); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save hero")
	}
	s.invalidate(ctx)
	return hero, nil
}

// Projects returns active projects in display order.
func (s *PortfolioService) Projects(ctx context.Context) ([]models.Project, error) {
	var cached []models.Project
	if hit, _ := s.cache.Get(ctx, cacheKeyProjects, &cached); hit {
		return cached, nil
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	s.cacheSet(ctx, cacheKeyProjects, projects)
	return projects, nil
}

// CreateProject appends a project to the display order.
func (s *PortfolioService) CreateProject(ctx context.Context, req ProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid project payload")
	}
	project := &models.Project{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		GithubLink:  req.GithubLink,
		LiveLink:    req.LiveLink,
		Tags:        req.Tags,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}
	s.invalidate(ctx)
	return project, nil
}

// UpdateProject modifies a project's content fields.
func (s *PortfolioService) UpdateProject(ctx context.Context, id string, req ProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid project payload")
	}
	project := &models.Project{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		GithubLink:  req.GithubLink,
		LiveLink:    req.LiveLink,
		Tags:        req.Tags,
	}
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, s.mutationError(err, "project")
	}
	s.invalidate(ctx)
	return project, nil
}

// DeleteProject removes a project.
func (s *PortfolioService) DeleteProject(ctx context.Context, id string) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return s.mutationError(err, "project")
	}
	s.invalidate(ctx)
	return nil
}

// Skills returns active skills in display order.
func (s *PortfolioService) Skills(ctx context.Context) ([]models.Skill, error) {
	var cached []models.Skill
	if hit, _ := s.cache.Get(ctx, cacheKeySkills, &cached); hit {
		return cached, nil
	}
	skills, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list skills")
	}
	s.cacheSet(ctx, cacheKeySkills, skills)
	return skills, nil
}

// CreateSkill appends a skill to the display order.
func (s *PortfolioService) CreateSkill(ctx context.Context, req SkillRequest) (*models.Skill, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid skill payload")
	}
	skill := &models.Skill{
		Name:     req.Name,
		Level:    models.SkillLevel(req.Level),
		Category: req.Category,
	}
	if err := s.repo.CreateSkill(ctx, skill); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create skill")
	}
	s.invalidate(ctx)
	return skill, nil
}

// UpdateSkill modifies a skill entry.
func (s *PortfolioService) UpdateSkill(ctx context.Context, id string, req SkillRequest) (*models.Skill, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid skill payload")
	}
	skill := &models.Skill{
		ID:       id,
		Name:     req.Name,
		Level:    models.SkillLevel(req.Level),
		Category: req.Category,
	}
	if err := s.repo.UpdateSkill(ctx, skill); err != nil {
		return nil, s.mutationError(err, "skill")
	}
	s.invalidate(ctx)
	return skill, nil
}

// DeleteSkill removes a skill entry.
func (s *PortfolioService) DeleteSkill(ctx context.Context, id string) error {
	if err := s.repo.DeleteSkill(ctx, id); err != nil {
		return s.mutationError(err, "skill")
	}
	s.invalidate(ctx)
	return nil
}

// Education returns active education entries in display order.
func (s *PortfolioService) Education(ctx context.Context) ([]models.Education, error) {
	var cached []models.Education
	if hit, _ := s.cache.Get(ctx, cacheKeyEducation, &cached); hit {
		return cached, nil
	}
	entries, err := s.repo.ListEducation(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list education")
	}
	s.cacheSet(ctx, cacheKeyEducation, entries)
	return entries, nil
}

// CreateEducation appends an education entry to the display order.
func (s *PortfolioService) CreateEducation(ctx context.Context, req EducationRequest) (*models.Education, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid education payload")
	}
	entry := &models.Education{
		Institution: req.Institution,
		Degree:      req.Degree,
		Field:       req.Field,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	}
	if err := s.repo.CreateEducation(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create education entry")
	}
	s.invalidate(ctx)
	return entry, nil
}

// UpdateEducation modifies an education entry.
func (s *PortfolioService) UpdateEducation(ctx context.Context, id string, req EducationRequest) (*models.Education, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid education payload")
	}
	entry := &models.Education{
		ID:          id,
		Institution: req.Institution,
		Degree:      req.Degree,
		Field:       req.Field,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	}
	if err := s.repo.UpdateEducation(ctx, entry); err != nil {
		return nil, s.mutationError(err, "education entry")
	}
	s.invalidate(ctx)
	return entry, nil
}

// DeleteEducation removes an education entry.
func (s *PortfolioService) DeleteEducation(ctx context.Context, id string) error {
	if err := s.repo.DeleteEducation(ctx, id); err != nil {
		return s.mutationError(err, "education entry")
	}
	s.invalidate(ctx)
	return nil
}

// Contact returns the active contact card.
func (s *PortfolioService) Contact(ctx context.Context) (*models.Contact, error) {
	var cached models.Contact
	if hit, _ := s.cache.Get(ctx, cacheKeyContact, &cached); hit {
		return &cached, nil
	}
	contact, err := s.repo.ActiveContact(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contact not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact")
	}
	s.cacheSet(ctx, cacheKeyContact, contact)
	return contact, nil
}

// UpsertContact replaces the active contact card.
func (s *PortfolioService) UpsertContact(ctx context.Context, req ContactRequest) (*models.Contact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid contact payload")
	}
	contact := &models.Contact{
		Email:    req.Email,
		Phone:    req.Phone,
		LinkedIn: req.LinkedIn,
		Github:   req.Github,
		Twitter:  req.Twitter,
		Address:  req.Address,
	}
	if err := s.repo.ReplaceContact(ctx, contact); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save contact")
	}
	s.invalidate(ctx)
	return contact, nil
}

// Comments lists visitor comments. Unapproved entries are only included when
// requested, which handlers restrict to admins.
func (s *PortfolioService) Comments(ctx context.Context, includeUnapproved bool) ([]models.Comment, error) {
	if !includeUnapproved {
		var cached []models.Comment
		if hit, _ := s.cache.Get(ctx, cacheKeyApprovedComments, &cached); hit {
			return cached, nil
		}
	}
	comments, err := s.repo.ListComments(ctx, !includeUnapproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	if !includeUnapproved {
		s.cacheSet(ctx, cacheKeyApprovedComments, comments)
	}
	return comments, nil
}

// CreateComment stores a visitor comment pending moderation.
func (s *PortfolioService) CreateComment(ctx context.Context, req CommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid comment payload")
	}
	comment := &models.Comment{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// ApproveComment marks a comment as visible.
func (s *PortfolioService) ApproveComment(ctx context.Context, id string) error {
	if err := s.repo.ApproveComment(ctx, id); err != nil {
		return s.mutationError(err, "comment")
	}
	s.invalidate(ctx)
	return nil
}

// DeleteComment removes a comment.
func (s *PortfolioService) DeleteComment(ctx context.Context, id string) error {
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return s.mutationError(err, "comment")
	}
	s.invalidate(ctx)
	return nil
}

// Resume assembles the active portfolio content into a PDF résumé.
func (s *PortfolioService) Resume(ctx context.Context) ([]byte, error) {
	hero, err := s.repo.ActiveHero(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hero")
	}
	contact, err := s.repo.ActiveContact(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact")
	}
	skills, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list skills")
	}
	education, err := s.repo.ListEducation(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list education")
	}

	resume := export.Resume{}
	if hero != nil {
		resume.Name = hero.Heading
		resume.Tagline = hero.Subheading
	}
	if contact != nil {
		resume.Contact = contactLines(contact)
	}
	for _, sk := range skills {
		resume.Skills = append(resume.Skills, export.ResumeSkill{
			Category: sk.Category,
			Name:     sk.Name,
			Level:    string(sk.Level),
		})
	}
	for _, ed := range education {
		resume.Education = append(resume.Education, export.ResumeEducation{
			Institution: ed.Institution,
			Degree:      ed.Degree,
			Field:       ed.Field,
			Period:      educationPeriod(ed),
			Description: derefString(ed.Description),
		})
	}

	data, err := s.resume.Render(resume)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render resume")
	}
	return data, nil
}

func (s *PortfolioService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		s.logger.Warn("portfolio cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PortfolioService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePatternPortfolio); err != nil {
		s.logger.Warn("portfolio cache invalidation failed", zap.Error(err))
	}
}

func (s *PortfolioService) mutationError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to modify "+entity)
}

func contactLines(c *models.Contact) []string {
	lines := []string{c.Email}
	for _, v := range []*string{c.Phone, c.LinkedIn, c.Github, c.Twitter, c.Address} {
		if v != nil && *v != "" {
			lines = append(lines, *v)
		}
	}
	return lines
}

func educationPeriod(ed models.Education) string {
	start := ed.StartDate.Format("Jan 2006")
	if ed.EndDate == nil {
		return fmt.Sprintf("%s - Present", start)
	}
	return fmt.Sprintf("%s - %s", start, ed.EndDate.Format("Jan 2006"))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
