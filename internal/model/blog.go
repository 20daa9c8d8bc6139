package model

import (
	"time"
)

type BlogPost struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Excerpt   string    `db:"excerpt" json:"excerpt"`
	Content   string    `db:"content" json:"content,omitempty"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Author    string    `db:"author" json:"author"`
	Date      string    `db:"date" json:"date"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SaveBlogPostParams is the editable part of a post, shared by create and
// update. Author, Date and Category fall back to defaults when empty.
type SaveBlogPostParams struct {
	Title    string `json:"title" validate:"required,max=300"`
	Excerpt  string `json:"excerpt" validate:"required,max=1000"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
	Author   string `json:"author" validate:"max=100"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Category string `json:"category" validate:"max=100"`
}

type BlogPage struct {
	Posts      []BlogPost `json:"posts"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}
