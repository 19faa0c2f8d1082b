package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/dto"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/service"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// BlogHandler manages post, tag and comment endpoints. Reads are public;
// writes require the caller to be authenticated.
type BlogHandler struct {
	service *service.BlogService
}

// NewBlogHandler constructs handler.
func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{service: blogService}
}

// CreatePost POST /blog/posts.
func (h *BlogHandler) CreatePost(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	post, err := h.service.CreatePost(c.Context(), user.ID, service.PostCreateInput{
		Title:   req.Title,
		Content: req.Content,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": postResponse(post)})
}

// ListPosts GET /blog/posts.
func (h *BlogHandler) ListPosts(c *fiber.Ctx) error {
	var tagID *string
	if tag := c.Query("tag_id"); tag != "" {
		tagID = &tag
	}
	posts, err := h.service.ListPosts(c.Context(), tagID)
	if err != nil {
		return err
	}
	items := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, postResponse(&posts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPost GET /blog/posts/:id.
func (h *BlogHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.service.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": postResponse(post)})
}

// UpdatePost PATCH /blog/posts/:id.
func (h *BlogHandler) UpdatePost(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	post, err := h.service.UpdatePost(c.Context(), user.ID, c.Params("id"), service.PostUpdateInput{
		Title:   req.Title,
		Content: req.Content,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": postResponse(post)})
}

// DeletePost DELETE /blog/posts/:id.
func (h *BlogHandler) DeletePost(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeletePost(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTag POST /blog/tags.
func (h *BlogHandler) CreateTag(c *fiber.Ctx) error {
	var req dto.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	tag, err := h.service.CreateTag(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": tagResponse(tag)})
}

// ListTags GET /blog/tags.
func (h *BlogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		items = append(items, tagResponse(&tags[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /blog/posts/:id/comments.
func (h *BlogHandler) AddComment(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	comment, err := h.service.AddComment(c.Context(), user.ID, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /blog/posts/:id/comments.
func (h *BlogHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.service.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func tagResponse(t *domain.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name}
}

func postResponse(p *domain.Post) dto.PostResponse {
	tags := make([]dto.TagResponse, 0, len(p.Tags))
	for i := range p.Tags {
		tags = append(tags, tagResponse(&p.Tags[i]))
	}
	return dto.PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		AuthorID:      p.AuthorID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Tags:          tags,
		CommentsCount: p.CommentsCount,
	}
}

func commentResponse(cm *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		AuthorID:  cm.AuthorID,
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt,
	}
}
