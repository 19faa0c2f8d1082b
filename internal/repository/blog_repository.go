package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// PostRepository encapsulates blog post persistence. comments_count is
// annotated per query, never stored.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post, tagIDs []string) error
	// GetForAuthor loads a post only when authorID wrote it; a miss is
	// indistinguishable from the post not existing.
	GetForAuthor(ctx context.Context, id, authorID string) (*domain.Post, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// SetTags replaces the post's tag set with exactly tagIDs.
	SetTags(ctx context.Context, postID string, tagIDs []string) error
	Delete(ctx context.Context, id, authorID string) error
	List(ctx context.Context, tagID *string) ([]domain.Post, error)
}

// TagRepository persists blog tags.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	List(ctx context.Context) ([]domain.Tag, error)
}

// CommentRepository persists post comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
}

const postColumns = `
        p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count`

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post, tagIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO posts (title, content, author_id)
            VALUES ($1,$2,$3)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query, post.Title, post.Content, post.AuthorID).
			Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return err
		}
		return setAssociations(ctx, tx, "post_tags", "post_id", "tag_id", post.ID, tagIDs)
	})
}

func (r *postRepository) GetForAuthor(ctx context.Context, id, authorID string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id=$1 AND p.author_id=$2`
	return r.fetchSingle(ctx, query, id, authorID)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *postRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Post, error) {
	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&post.ID, &post.Title, &post.Content, &post.AuthorID,
		&post.CreatedAt, &post.UpdatedAt, &post.CommentsCount,
	); err != nil {
		return nil, err
	}
	tags, err := r.tagsForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Tags = tags
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, content=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, post.Title, post.Content, post.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) SetTags(ctx context.Context, postID string, tagIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return setAssociations(ctx, tx, "post_tags", "post_id", "tag_id", postID, tagIDs)
	})
}

func (r *postRepository) Delete(ctx context.Context, id, authorID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1 AND author_id=$2`, id, authorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, tagID *string) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p`
	args := []any{}
	if tagID != nil {
		args = append(args, *tagID)
		query += ` WHERE EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id=$1)`
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.AuthorID,
			&post.CreatedAt, &post.UpdatedAt, &post.CommentsCount,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		tags, err := r.tagsForPost(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Tags = tags
	}
	return posts, nil
}

func (r *postRepository) tagsForPost(ctx context.Context, postID string) ([]domain.Tag, error) {
	const query = `
        SELECT t.id, t.name
        FROM post_tags pt
        JOIN tags t ON t.id = pt.tag_id
        WHERE pt.post_id=$1 ORDER BY t.name`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository instantiates repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `INSERT INTO tags (name) VALUES ($1) RETURNING id`
	return r.pool.QueryRow(ctx, query, tag.Name).Scan(&tag.ID)
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (post_id, author_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, comment.PostID, comment.AuthorID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, post_id, author_id, text, created_at
        FROM comments WHERE post_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
