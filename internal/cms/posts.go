package cms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kaushiktak19/blog-website/internal/models"
)

const postFields = `
	title
	excerpt
	slug
	date
	content
	featuredImage { node { sourceUrl } }
	author { node { name avatar { url } } }
	categories { edges { node { name } } }
`

const postsQuery = `
query Posts($first: Int!, $after: String, $category: String!) {
	posts(first: $first, after: $after, where: { categoryName: $category, orderby: { field: DATE, order: DESC } }) {
		pageInfo { hasNextPage endCursor }
		edges { node {` + postFields + `} }
	}
}`

const postsPageQuery = `
query PostsPage($offset: Int!, $size: Int!, $category: String!) {
	posts(where: { categoryName: $category, orderby: { field: DATE, order: DESC }, offsetPagination: { offset: $offset, size: $size } }) {
		pageInfo { offsetPagination { total hasMore } }
		edges { node {` + postFields + `} }
	}
}`

const tagsQuery = `
query Tags($first: Int!, $after: String) {
	tags(first: $first, after: $after) {
		pageInfo { hasNextPage endCursor }
		edges { node { name slug } }
	}
}`

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type postNode struct {
	Title         string `json:"title"`
	Excerpt       string `json:"excerpt"`
	Slug          string `json:"slug"`
	Date          string `json:"date"`
	Content       string `json:"content"`
	FeaturedImage *struct {
		Node struct {
			SourceURL string `json:"sourceUrl"`
		} `json:"node"`
	} `json:"featuredImage"`
	Author *struct {
		Node struct {
			Name   string `json:"name"`
			Avatar *struct {
				URL string `json:"url"`
			} `json:"avatar"`
		} `json:"node"`
	} `json:"author"`
	Categories struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"categories"`
}

type postEdges struct {
	Edges []struct {
		Node postNode `json:"node"`
	} `json:"edges"`
}

type postsData struct {
	Posts struct {
		PageInfo pageInfo `json:"pageInfo"`
		postEdges
	} `json:"posts"`
}

type postsPageData struct {
	Posts struct {
		PageInfo struct {
			OffsetPagination struct {
				Total   int  `json:"total"`
				HasMore bool `json:"hasMore"`
			} `json:"offsetPagination"`
		} `json:"pageInfo"`
		postEdges
	} `json:"posts"`
}

type tagsData struct {
	Tags struct {
		PageInfo pageInfo `json:"pageInfo"`
		Edges    []struct {
			Node models.Tag `json:"node"`
		} `json:"edges"`
	} `json:"tags"`
}

// maxPages bounds cursor walks in case the CMS keeps handing out cursors.
const maxPages = 200

// Posts returns every post in the given category, newest first, following
// the cursor until the CMS reports no further page.
func (c *Client) Posts(ctx context.Context, category string) ([]models.Post, error) {
	var (
		posts []models.Post
		after any
	)
	for range maxPages {
		var data postsData
		vars := map[string]any{"first": c.pageSize, "after": after, "category": category}
		if err := c.do(ctx, "posts", postsQuery, vars, &data); err != nil {
			return nil, err
		}
		posts = append(posts, toPosts(data.Posts.postEdges)...)

		info := data.Posts.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			return posts, nil
		}
		after = info.EndCursor
	}
	return nil, fmt.Errorf("cms posts %q: more than %d pages", category, maxPages)
}

// PostsPage returns one offset page of a category. page starts at 1.
func (c *Client) PostsPage(ctx context.Context, category string, page, size int) (models.PostPage, error) {
	page = max(page, 1)
	size = max(size, 1)

	var data postsPageData
	vars := map[string]any{"offset": (page - 1) * size, "size": size, "category": category}
	if err := c.do(ctx, "posts_page", postsPageQuery, vars, &data); err != nil {
		return models.PostPage{}, err
	}

	info := data.Posts.PageInfo.OffsetPagination
	return models.PostPage{
		Posts:       toPosts(data.Posts.postEdges),
		Page:        page,
		PageSize:    size,
		Total:       info.Total,
		HasNextPage: info.HasMore,
	}, nil
}

func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	var (
		tags  []models.Tag
		after any
	)
	for range maxPages {
		var data tagsData
		vars := map[string]any{"first": c.pageSize, "after": after}
		if err := c.do(ctx, "tags", tagsQuery, vars, &data); err != nil {
			return nil, err
		}
		for _, e := range data.Tags.Edges {
			tags = append(tags, e.Node)
		}

		info := data.Tags.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			return tags, nil
		}
		after = info.EndCursor
	}
	return nil, fmt.Errorf("cms tags: more than %d pages", maxPages)
}

func toPosts(edges postEdges) []models.Post {
	posts := make([]models.Post, 0, len(edges.Edges))
	for _, e := range edges.Edges {
		posts = append(posts, e.Node.toPost())
	}
	return posts
}

func (n postNode) toPost() models.Post {
	p := models.Post{
		Slug:    n.Slug,
		Title:   n.Title,
		Excerpt: n.Excerpt,
		Content: n.Content,
		Date:    parseDate(n.Date),
	}
	if n.FeaturedImage != nil {
		p.CoverImage = n.FeaturedImage.Node.SourceURL
	}
	if n.Author != nil {
		p.AuthorName = strings.TrimSpace(n.Author.Node.Name)
		if n.Author.Node.Avatar != nil {
			p.AuthorImage = n.Author.Node.Avatar.URL
		}
	}
	for _, e := range n.Categories.Edges {
		p.Categories = append(p.Categories, models.Category{Name: e.Node.Name})
	}
	return p
}

// WordPress GraphQL returns site-local timestamps without a zone.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
