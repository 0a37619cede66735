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

const postColumns = `p.id, p.title, p.slug, p.content, p.image_url, p.published, p.author_id, p.created_at, p.updated_at,
	u.id AS "author.id", u.name AS "author.name", u.email AS "author.email"`

// PostRepository handles persistence for blog posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new repository instance.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns posts newest first with their author summary joined.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id`, postColumns)
	var args []interface{}
	if filter.PublishedOnly {
		query += ` WHERE p.published = $1`
		args = append(args, true)
	}
	query += ` ORDER BY p.created_at DESC`

	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// FindBySlug returns a post by its slug.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id WHERE p.slug = $1 LIMIT 1`, postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return &post, nil
}

// FindByID returns a post by identifier.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1 LIMIT 1`, postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return &post, nil
}

// Create persists a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	const query = `INSERT INTO posts (id, title, slug, content, image_url, published, author_id, created_at, updated_at) VALUES (:id, :title, :slug, :content, :image_url, :published, :author_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a post.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	const query = `UPDATE posts SET title = :title, slug = :slug, content = :content, image_url = :image_url, published = :published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post record.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
