package dto

import "time"

// CreatePostRequest payload.
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required"`
	TagIDs  []string `json:"tag_ids"`
}

// UpdatePostRequest carries only the fields to change; absent fields are
// left untouched. A present tag_ids replaces the whole tag set.
type UpdatePostRequest struct {
	Title   *string   `json:"title" validate:"omitempty,max=200"`
	Content *string   `json:"content"`
	TagIDs  *[]string `json:"tag_ids"`
}

// TagRequest payload.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// TagResponse representation.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostResponse representation; comments_count is computed per read.
type PostResponse struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	AuthorID      string        `json:"author_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Tags          []TagResponse `json:"tags"`
	CommentsCount int           `json:"comments_count"`
}

// CommentRequest payload.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// CommentResponse representation.
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
