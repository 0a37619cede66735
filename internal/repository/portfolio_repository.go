package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arahman-dev/blogfolio-api/internal/models"
)

// PortfolioRepository handles persistence for the fixed portfolio sections.
type PortfolioRepository struct {
	db *sqlx.DB
}

// NewPortfolioRepository creates a new repository instance.
func NewPortfolioRepository(db *sqlx.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// ActiveHero returns the newest active hero, or sql.ErrNoRows when none.
func (r *PortfolioRepository) ActiveHero(ctx context.Context) (*models.Hero, error) {
	const query = `SELECT id, heading, subheading, cta_text, cta_link, image_url, is_active, created_at FROM portfolio_heroes WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1`
	var hero models.Hero
	if err := r.db.GetContext(ctx, &hero, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("active hero: %w", err)
	}
	return &hero, nil
}

// ReplaceHero deactivates the current hero rows and inserts a fresh active one.
func (r *PortfolioRepository) ReplaceHero(ctx context.Context, hero *models.Hero) error {
	if hero.ID == "" {
		hero.ID = uuid.NewString()
	}
	hero.IsActive = true
	hero.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `UPDATE portfolio_heroes SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("deactivate heroes: %w", err)
	}
	const query = `INSERT INTO portfolio_heroes (id, heading, subheading, cta_text, cta_link, image_url, is_active, created_at) VALUES (:id, :heading, :subheading, :cta_text, :cta_link, :image_url, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hero); err != nil {
		return fmt.Errorf("insert hero: %w", err)
	}
	return nil
}

// ListProjects returns active projects in display order.
func (r *PortfolioRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	const query = `SELECT id, title, description, image_url, github_link, live_link, tags, display_order, is_active, created_at, updated_at FROM portfolio_projects WHERE is_active = TRUE ORDER BY display_order ASC`
	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// CreateProject inserts a project at the end of the display order.
func (r *PortfolioRepository) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	project.IsActive = true

	var maxOrder sql.NullInt64
	if err := r.db.GetContext(ctx, &maxOrder, `SELECT MAX(display_order) FROM portfolio_projects`); err != nil {
		return fmt.Errorf("max project order: %w", err)
	}
	project.DisplayOrder = int(maxOrder.Int64) + 1

	const query = `INSERT INTO portfolio_projects (id, title, description, image_url, github_link, live_link, tags, display_order, is_active, created_at, updated_at) VALUES (:id, :title, :description, :image_url, :github_link, :live_link, :tags, :display_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// UpdateProject modifies a project's content fields.
func (r *PortfolioRepository) UpdateProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	const query = `UPDATE portfolio_projects SET title = :title, description = :description, image_url = :image_url, github_link = :github_link, live_link = :live_link, tags = :tags, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, project)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res, "update project")
}

// DeleteProject removes a project record.
func (r *PortfolioRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res, "delete project")
}

// ListSkills returns active skills in display order.
func (r *PortfolioRepository) ListSkills(ctx context.Context) ([]models.Skill, error) {
	const query = `SELECT id, name, level, category, display_order, is_active, created_at, updated_at FROM portfolio_skills WHERE is_active = TRUE ORDER BY display_order ASC`
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// CreateSkill inserts a skill at the end of the display order.
func (r *PortfolioRepository) CreateSkill(ctx context.Context, skill *models.Skill) error {
	if skill.ID == "" {
		skill.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	skill.CreatedAt = now
	skill.UpdatedAt = now
	skill.IsActive = true

	var maxOrder sql.NullInt64
	if err := r.db.GetContext(ctx, &maxOrder, `SELECT MAX(display_order) FROM portfolio_skills`); err != nil {
		return fmt.Errorf("max skill order: %w", err)
	}
	skill.DisplayOrder = int(maxOrder.Int64) + 1

	const query = `INSERT INTO portfolio_skills (id, name, level, category, display_order, is_active, created_at, updated_at) VALUES (:id, :name, :level, :category, :display_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, skill); err != nil {
		return fmt.Errorf("create skill: %w", err)
	}
	return nil
}

// UpdateSkill modifies a skill's content fields.
func (r *PortfolioRepository) UpdateSkill(ctx context.Context, skill *models.Skill) error {
	skill.UpdatedAt = time.Now().UTC()
	const query = `UPDATE portfolio_skills SET name = :name, level = :level, category = :category, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, skill)
	if err != nil {
		return fmt.Errorf("update skill: %w", err)
	}
	return requireRow(res, "update skill")
}

// DeleteSkill removes a skill record.
func (r *PortfolioRepository) DeleteSkill(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	return requireRow(res, "delete skill")
}

// ListEducation returns active education entries in display order.
func (r *PortfolioRepository) ListEducation(ctx context.Context) ([]models.Education, error) {
	const query = `SELECT id, institution, degree, field, start_date, end_date, description, display_order, is_active, created_at, updated_at FROM portfolio_education WHERE is_active = TRUE ORDER BY display_order ASC`
	var entries []models.Education
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	return entries, nil
}

// CreateEducation inserts an education entry at the end of the display order.
func (r *PortfolioRepository) CreateEducation(ctx context.Context, entry *models.Education) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.IsActive = true

	var maxOrder sql.NullInt64
	if err := r.db.GetContext(ctx, &maxOrder, `SELECT MAX(display_order) FROM portfolio_education`); err != nil {
		return fmt.Errorf("max education order: %w", err)
	}
	entry.DisplayOrder = int(maxOrder.Int64) + 1

	const query = `INSERT INTO portfolio_education (id, institution, degree, field, start_date, end_date, description, display_order, is_active, created_at, updated_at) VALUES (:id, :institution, :degree, :field, :start_date, :end_date, :description, :display_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create education: %w", err)
	}
	return nil
}

// UpdateEducation modifies an education entry.
func (r *PortfolioRepository) UpdateEducation(ctx context.Context, entry *models.Education) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE portfolio_education SET institution = :institution, degree = :degree, field = :field, start_date = :start_date, end_date = :end_date, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update education: %w", err)
	}
	return requireRow(res, "update education")
}

// DeleteEducation removes an education record.
func (r *PortfolioRepository) DeleteEducation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_education WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete education: %w", err)
	}
	return requireRow(res, "delete education")
}

// ActiveContact returns the newest active contact card, or sql.ErrNoRows.
func (r *PortfolioRepository) ActiveContact(ctx context.Context) (*models.Contact, error) {
	const query = `SELECT id, email, phone, linkedin, github, twitter, address, is_active, created_at FROM portfolio_contacts WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1`
	var contact models.Contact
	if err := r.db.GetContext(ctx, &contact, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("active contact: %w", err)
	}
	return &contact, nil
}

// ReplaceContact deactivates the current contact rows and inserts a new one.
func (r *PortfolioRepository) ReplaceContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	contact.IsActive = true
	contact.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `UPDATE portfolio_contacts SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("deactivate contacts: %w", err)
	}
	const query = `INSERT INTO portfolio_contacts (id, email, phone, linkedin, github, twitter, address, is_active, created_at) VALUES (:id, :email, :phone, :linkedin, :github, :twitter, :address, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, contact); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ListComments returns comments newest first, optionally restricted to
// approved entries.
func (r *PortfolioRepository) ListComments(ctx context.Context, approvedOnly bool) ([]models.Comment, error) {
	query := `SELECT id, name, email, message, approved, created_at FROM portfolio_comments`
	var args []interface{}
	if approvedOnly {
		query += ` WHERE approved = $1`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC`

	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CreateComment stores a visitor comment pending approval.
func (r *PortfolioRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.Approved = false
	comment.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO portfolio_comments (id, name, email, message, approved, created_at) VALUES (:id, :name, :email, :message, :approved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ApproveComment marks a comment as approved.
func (r *PortfolioRepository) ApproveComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE portfolio_comments SET approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve comment: %w", err)
	}
	return requireRow(res, "approve comment")
}

// DeleteComment removes a comment record.
func (r *PortfolioRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireRow(res, "delete comment")
}

// requireRow maps zero affected rows onto sql.ErrNoRows so services can
// translate missing targets into 404s.
func requireRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
