package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// BlogService coordinates posts, tags and comments.
type BlogService struct {
	posts    repository.PostRepository
	tags     repository.TagRepository
	comments repository.CommentRepository
}

// BlogDependencies bundles repositories for blog service.
type BlogDependencies struct {
	PostRepo    repository.PostRepository
	TagRepo     repository.TagRepository
	CommentRepo repository.CommentRepository
}

// NewBlogService creates the service.
func NewBlogService(deps BlogDependencies) *BlogService {
	return &BlogService{
		posts:    deps.PostRepo,
		tags:     deps.TagRepo,
		comments: deps.CommentRepo,
	}
}

// PostCreateInput describes post creation payload.
type PostCreateInput struct {
	Title   string
	Content string
	TagIDs  []string
}

// PostUpdateInput carries only the fields the caller wants changed; nil
// fields keep their stored value.
type PostUpdateInput struct {
	Title   *string
	Content *string
	TagIDs  *[]string
}

// CreatePost publishes a post authored by the caller.
func (s *BlogService) CreatePost(ctx context.Context, authorID string, input PostCreateInput) (*domain.Post, error) {
	post := &domain.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post, input.TagIDs); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// ListPosts returns posts newest first, optionally filtered by tag.
func (s *BlogService) ListPosts(ctx context.Context, tagID *string) ([]domain.Post, error) {
	return s.posts.List(ctx, tagID)
}

// GetPost returns one post with tags and comment count.
func (s *BlogService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost partially updates one of the caller's posts. A post written by
// someone else is reported as missing. Passing TagIDs replaces the whole tag
// set.
func (s *BlogService) UpdatePost(ctx context.Context, authorID, postID string, input PostUpdateInput) (*domain.Post, error) {
	post, err := s.posts.GetForAuthor(ctx, postID, authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if input.TagIDs != nil {
		if err := s.posts.SetTags(ctx, post.ID, *input.TagIDs); err != nil {
			return nil, err
		}
	}
	return s.posts.GetForAuthor(ctx, postID, authorID)
}

// DeletePost removes one of the caller's posts.
func (s *BlogService) DeletePost(ctx context.Context, authorID, postID string) error {
	if err := s.posts.Delete(ctx, postID, authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("post", nil)
		}
		return err
	}
	return nil
}

// CreateTag adds a blog tag.
func (s *BlogService) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	tag := &domain.Tag{Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns all blog tags.
func (s *BlogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// AddComment attaches a comment by the caller to an existing post.
func (s *BlogService) AddComment(ctx context.Context, authorID, postID, text string) (*domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}

	comment := &domain.Comment{PostID: postID, AuthorID: authorID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments, oldest first.
func (s *BlogService) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}
