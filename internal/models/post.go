package models

import (
	"strings"
	"time"
)

type Collection string

const (
	CollectionTechnology Collection = "technology"
	CollectionCommunity  Collection = "community"
)

type Category struct {
	Name string `json:"name"`
}

// Post is a CMS post together with the fields derived for it during
// normalization (collection, reading time, card excerpt and search text).
type Post struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	ExcerptText string     `json:"excerptText,omitempty"`
	Content     string     `json:"content,omitempty"`
	Date        time.Time  `json:"date"`
	AuthorName  string     `json:"authorName"`
	AuthorImage string     `json:"authorImage,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Categories  []Category `json:"categories,omitempty"`

	Collection  Collection `json:"collection"`
	ReadingTime int        `json:"readingTime,omitempty"`

	SearchTitle   string `json:"-"`
	SearchExcerpt string `json:"-"`
}

// HasCategory reports whether the post carries a category with the given
// name, ignoring case.
func (p Post) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ListItem drops the raw content, which list responses never need.
func (p Post) ListItem() PostListItem {
	return PostListItem{
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		ExcerptText: p.ExcerptText,
		Date:        p.Date,
		AuthorName:  p.AuthorName,
		AuthorImage: p.AuthorImage,
		CoverImage:  p.CoverImage,
		Collection:  p.Collection,
		ReadingTime: p.ReadingTime,
	}
}

type PostListItem struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	ExcerptText string     `json:"excerptText,omitempty"`
	Date        time.Time  `json:"date"`
	AuthorName  string     `json:"authorName"`
	AuthorImage string     `json:"authorImage,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Collection  Collection `json:"collection"`
	ReadingTime int        `json:"readingTime,omitempty"`
}

func ListItems(posts []Post) []PostListItem {
	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.ListItem())
	}
	return items
}

// PostPage is one offset page of a collection as served by the CMS.
type PostPage struct {
	Posts       []Post `json:"posts"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	Total       int    `json:"total"`
	HasNextPage bool   `json:"hasNextPage"`
}

type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
