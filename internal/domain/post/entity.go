package post

import "time"

type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	AuthorID  int64     `json:"author_id" gorm:"not null;index:idx_posts_author_id"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }
