package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaushiktak19/blog-website/internal/models"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists the last good content snapshot so the service can serve
// something when the CMS is down at startup.
type Store struct {
	pool DB
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func NewStoreWithDB(pool DB) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	return s.pool.Ping(ctx)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    position INT NOT NULL,
    collection TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    author_name TEXT NOT NULL DEFAULT '',
    author_image TEXT NOT NULL DEFAULT '',
    cover_image TEXT NOT NULL DEFAULT '',
    categories TEXT[] NOT NULL DEFAULT '{}',
    synced_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tags (
    position INT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL DEFAULT ''
);`

// Migrate creates the snapshot tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create snapshot tables: %w", err)
	}
	return nil
}

var (
	postColumns = []string{
		"slug", "position", "collection", "title", "excerpt", "content",
		"published_at", "author_name", "author_image", "cover_image", "categories",
	}
	tagColumns = []string{"position", "name", "slug"}
)

// ReplaceSnapshot swaps the stored posts and tags for the given ones in a
// single transaction. Post order is kept through the position column.
func (s *Store) ReplaceSnapshot(ctx context.Context, posts []models.Post, tags []models.Tag) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}

	if err := replaceSnapshot(ctx, tx, posts, tags); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback snapshot: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func replaceSnapshot(ctx context.Context, tx pgx.Tx, posts []models.Post, tags []models.Tag) error {
	if _, err := tx.Exec(ctx, "DELETE FROM posts"); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM tags"); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	postRows := make([][]any, 0, len(posts))
	for i, p := range posts {
		postRows = append(postRows, []any{
			p.Slug, i, string(p.Collection), p.Title, p.Excerpt, p.Content,
			p.Date, p.AuthorName, p.AuthorImage, p.CoverImage, categoryNames(p.Categories),
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"posts"}, postColumns, pgx.CopyFromRows(postRows)); err != nil {
		return fmt.Errorf("copy posts: %w", err)
	}

	tagRows := make([][]any, 0, len(tags))
	for i, t := range tags {
		tagRows = append(tagRows, []any{i, t.Name, t.Slug})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"tags"}, tagColumns, pgx.CopyFromRows(tagRows)); err != nil {
		return fmt.Errorf("copy tags: %w", err)
	}
	return nil
}

const selectPostSQL = `
	SELECT
		slug,
		collection,
		title,
		excerpt,
		content,
		published_at,
		author_name,
		author_image,
		cover_image,
		categories
	FROM posts
`

// ListPosts returns the stored snapshot in the order it was written.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	rows, err := s.pool.Query(ctx, selectPostSQL+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

// GetPostBySlug returns nil without an error when no post has the slug.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	post, err := scanPost(s.pool.QueryRow(ctx, selectPostSQL+" WHERE slug = $1", slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return &post, nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	rows, err := s.pool.Query(ctx, "SELECT name, slug FROM tags ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tags, nil
}

func scanPost(row pgx.Row) (models.Post, error) {
	var (
		post       models.Post
		collection string
		date       time.Time
		categories []string
	)
	if err := row.Scan(
		&post.Slug,
		&collection,
		&post.Title,
		&post.Excerpt,
		&post.Content,
		&date,
		&post.AuthorName,
		&post.AuthorImage,
		&post.CoverImage,
		&categories,
	); err != nil {
		return models.Post{}, err
	}
	post.Collection = models.Collection(collection)
	post.Date = date.UTC()
	for _, name := range categories {
		post.Categories = append(post.Categories, models.Category{Name: name})
	}
	return post, nil
}

func categoryNames(categories []models.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
