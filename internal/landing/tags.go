package landing

import (
	"regexp"
	"slices"
	"strings"

	"github.com/kaushiktak19/blog-website/internal/models"
)

const CuratedTagLimit = 40

var whitespaceRun = regexp.MustCompile(`\s+`)

// TagSlug turns a tag name into its URL segment.
func TagSlug(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(name, "-"))
}

// CurateTags drops blank and repeated tag names, moves prioritized tags to
// the front in priority order and caps the result at limit.
func CurateTags(tags []models.Tag, prioritized []string, limit int) []models.Tag {
	rank := make(map[string]int, len(prioritized))
	for i, name := range prioritized {
		key := tagKey(name)
		if _, ok := rank[key]; !ok {
			rank[key] = i
		}
	}

	seen := make(map[string]struct{}, len(tags))
	var first, rest []models.Tag
	for _, tag := range tags {
		if strings.TrimSpace(tag.Name) == "" {
			continue
		}
		key := tagKey(tag.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if tag.Slug == "" {
			tag.Slug = TagSlug(tag.Name)
		}
		if _, ok := rank[key]; ok {
			first = append(first, tag)
		} else {
			rest = append(rest, tag)
		}
	}
	slices.SortStableFunc(first, func(a, b models.Tag) int {
		return rank[tagKey(a.Name)] - rank[tagKey(b.Name)]
	})

	out := append(first, rest...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.Tag{}
	}
	return out
}

func tagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
