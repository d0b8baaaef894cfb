package service

import (
	"time"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/landing"
	"github.com/kaushiktak19/blog-website/internal/models"
)

type CollectionCovers struct {
	Technology []string `json:"technology"`
	Community  []string `json:"community"`
}

// Snapshot is an immutable view of the content at one refresh. Readers
// share it without copying, so nothing may modify it after publication.
type Snapshot struct {
	// Posts is the normalized browse list, technology first.
	Posts []models.Post
	// Community holds the community collection deduplicated on its own.
	Community   []models.Post
	Latest      []models.Post
	Tags        []models.Tag
	CuratedTags []models.Tag
	Authors     []models.FeaturedAuthor
	Covers      CollectionCovers
	Source      string
	RefreshedAt time.Time

	counts map[models.Collection]int
	bySlug map[string]models.Post
}

func buildSnapshot(technology, community []models.Post, tags []models.Tag, site config.Site, dir *landing.Directory, source string, now time.Time) *Snapshot {
	posts := landing.Normalize(technology, community)
	snap := &Snapshot{
		Posts:       posts,
		Community:   landing.Normalize(nil, community),
		Latest:      landing.Latest(technology, community, landing.LatestLimit),
		Tags:        tags,
		Source:      source,
		RefreshedAt: now,
		counts:      make(map[models.Collection]int, 2),
		bySlug:      make(map[string]models.Post, len(posts)),
	}

	for _, p := range posts {
		snap.counts[p.Collection]++
		snap.bySlug[p.Slug] = p
	}
	// Covers follow each category as fetched, so a post filed under both
	// shows up in both collections.
	snap.Covers = CollectionCovers{
		Technology: landing.Covers(technology),
		Community:  landing.Covers(community),
	}
	return snap.withSite(site, dir)
}

// withSite returns a copy with the site-dependent lists rebuilt.
func (s *Snapshot) withSite(site config.Site, dir *landing.Directory) *Snapshot {
	next := *s
	next.CuratedTags = landing.CurateTags(s.Tags, site.PrioritizedTags, landing.CuratedTagLimit)
	next.Authors = landing.FeaturedAuthors(s.Posts, site.PreferredAuthors, dir, site.DefaultAvatar)
	return &next
}
