package domain

import "time"

// Tag categorizes posts.
type Tag struct {
	ID   string
	Name string
}

// Post is a blog publication. CommentsCount is a query-time projection.
type Post struct {
	ID            string
	Title         string
	Content       string
	AuthorID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Tags          []Tag
	CommentsCount int
}

// Comment belongs to a post.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
