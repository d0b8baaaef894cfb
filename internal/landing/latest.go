package landing

import (
	"slices"

	"github.com/kaushiktak19/blog-website/internal/models"
)

const (
	LatestLimit = 6
	coverLimit  = 10
)

// Latest merges both collections newest first and keeps the first limit
// posts. Collections come from each post's categories.
func Latest(technology, community []models.Post, limit int) []models.Post {
	merged := make([]models.Post, 0, len(technology)+len(community))
	for _, p := range slices.Concat(technology, community) {
		if p.Slug == "" {
			continue
		}
		p.Collection = CollectionOf(p)
		merged = append(merged, derive(p))
	}
	slices.SortStableFunc(merged, SortNewest.Compare)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Covers returns up to ten cover image URLs in post order.
func Covers(posts []models.Post) []string {
	urls := make([]string, 0, coverLimit)
	for _, p := range posts {
		if p.CoverImage == "" {
			continue
		}
		urls = append(urls, p.CoverImage)
		if len(urls) == coverLimit {
			break
		}
	}
	return urls
}

// SplitRows divides items into two rows, the first taking the extra item.
func SplitRows[T any](items []T) (top, bottom []T) {
	split := (len(items) + 1) / 2
	return items[:split], items[split:]
}
