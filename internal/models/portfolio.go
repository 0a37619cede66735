package models

import (
	"time"

	"github.com/lib/pq"
)

// Hero is the portfolio landing banner. Exactly one row is active at a time:
// updating deactivates the current row and inserts a fresh active one.
type Hero struct {
	ID         string    `db:"id" json:"id"`
	Heading    string    `db:"heading" json:"heading"`
	Subheading string    `db:"subheading" json:"subheading"`
	CTAText    string    `db:"cta_text" json:"cta_text"`
	CTALink    string    `db:"cta_link" json:"cta_link"`
	ImageURL   *string   `db:"image_url" json:"image_url,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Project is a portfolio project card, displayed in ascending order.
type Project struct {
	ID           string         `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	ImageURL     *string        `db:"image_url" json:"image_url,omitempty"`
	GithubLink   string         `db:"github_link" json:"github_link"`
	LiveLink     *string        `db:"live_link" json:"live_link,omitempty"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	DisplayOrder int            `db:"display_order" json:"display_order"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// SkillLevel enumerates proficiency levels.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillExpert       SkillLevel = "Expert"
)

// Skill is one portfolio skill entry.
type Skill struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Level        SkillLevel `db:"level" json:"level"`
	Category     string     `db:"category" json:"category"`
	DisplayOrder int        `db:"display_order" json:"display_order"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Education is one portfolio education entry.
type Education struct {
	ID           string     `db:"id" json:"id"`
	Institution  string     `db:"institution" json:"institution"`
	Degree       string     `db:"degree" json:"degree"`
	Field        string     `db:"field" json:"field"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	Description  *string    `db:"description" json:"description,omitempty"`
	DisplayOrder int        `db:"display_order" json:"display_order"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Contact holds the portfolio contact card. Activation-singleton like Hero.
type Contact struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	LinkedIn  *string   `db:"linkedin" json:"linkedin,omitempty"`
	Github    *string   `db:"github" json:"github,omitempty"`
	Twitter   *string   `db:"twitter" json:"twitter,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Comment is a visitor comment awaiting moderation.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
