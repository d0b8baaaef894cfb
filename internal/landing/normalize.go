// Package landing holds the listing logic behind the blog landing page:
// normalization of CMS posts, filtering, sorting, paging and the curated
// side lists (tags, authors, latest posts).
package landing

import (
	"slices"
	"strings"

	"github.com/kaushiktak19/blog-website/internal/models"
)

const (
	AnonymousAuthor = "Anonymous"
	// ExcerptWords is the length of the plain-text excerpt shown on cards.
	ExcerptWords = 34
)

// Normalize tags technology and community posts with their source
// collection, merges them (technology first) and drops duplicates by slug.
// Derived fields are computed here once so every later stage agrees on them.
func Normalize(technology, community []models.Post) []models.Post {
	merged := make([]models.Post, 0, len(technology)+len(community))
	for _, p := range technology {
		p.Collection = models.CollectionTechnology
		merged = append(merged, derive(p))
	}
	for _, p := range community {
		p.Collection = models.CollectionCommunity
		merged = append(merged, derive(p))
	}
	return Dedupe(merged)
}

// Dedupe keeps the first post for every slug and drops posts without one.
func Dedupe(posts []models.Post) []models.Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Slug == "" {
			continue
		}
		if _, ok := seen[p.Slug]; ok {
			continue
		}
		seen[p.Slug] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CollectionOf derives the collection from the post's categories.
func CollectionOf(p models.Post) models.Collection {
	if p.HasCategory("community") {
		return models.CollectionCommunity
	}
	return models.CollectionTechnology
}

// SplitByCollection is the inverse of Normalize for persisted snapshots.
func SplitByCollection(posts []models.Post) (technology, community []models.Post) {
	for _, p := range posts {
		if p.Collection == models.CollectionCommunity {
			community = append(community, p)
		} else {
			technology = append(technology, p)
		}
	}
	return technology, community
}

func derive(p models.Post) models.Post {
	if p.AuthorName == "" {
		p.AuthorName = AnonymousAuthor
	}
	p.ReadingTime = ReadingTime(p.Content)
	p.ExcerptText = Excerpt(p.Excerpt, ExcerptWords)
	p.SearchTitle = strings.ToLower(StripMarkup(p.Title))
	p.SearchExcerpt = strings.ToLower(StripMarkup(p.Excerpt))
	p.Categories = slices.Clone(p.Categories)
	return p
}
