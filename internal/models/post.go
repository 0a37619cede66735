package models

import "time"

// Post represents a blog post stored in the posts table.
type Post struct {
	ID        string     `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Slug      string     `db:"slug" json:"slug"`
	Content   string     `db:"content" json:"content"`
	ImageURL  *string    `db:"image_url" json:"image_url,omitempty"`
	Published bool       `db:"published" json:"published"`
	AuthorID  string     `db:"author_id" json:"author_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	Author    PostAuthor `db:"author" json:"author"`
}

// PostAuthor is the author summary joined into post responses.
type PostAuthor struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// PostFilter captures listing criteria for posts.
type PostFilter struct {
	PublishedOnly bool
}
